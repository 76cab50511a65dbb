package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakeshift/lakeshift/internal/output"
)

// DeployCmd creates and returns the 'deploy' command
func DeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [project-id]",
		Short: "Deploy a converted project to the workspace",
		Long: `Runs the deployment preflight checks, uploads the generated tree to
/Workspace/Apps/<name>, creates or updates the app, and deploys the
database schema when a warehouse is configured.

Example:
  lakeshift deploy proj_abc123def456`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			projectID := args[0]

			output.Verbose(fmt.Sprintf("Deploying project: %s", projectID))

			deployment, err := service.Deploy(cmd.Context(), projectID)
			if err != nil {
				fail(err)
			}

			output.Success(fmt.Sprintf("Deployed app: %s (%s)", deployment.AppName, deployment.ID))
			if deployment.URL != "" {
				output.Step(deployment.URL)
			}
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("lakeshift status %s", deployment.ID))
		},
	}

	return cmd
}
