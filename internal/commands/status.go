package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakeshift/lakeshift/internal/output"
)

// StatusCmd creates and returns the 'status' command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [deployment-id]",
		Short: "Check the state of a deployment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deploymentID := args[0]

			deployment, err := service.Status(cmd.Context(), deploymentID)
			if err != nil {
				fail(err)
			}

			output.Info(fmt.Sprintf("App %s: %s", deployment.AppName, deployment.State))
			if deployment.URL != "" {
				output.Step(deployment.URL)
			}
		},
	}

	return cmd
}
