package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/output"
)

// ConvertCmd creates and returns the 'convert' command
func ConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [project-id]",
		Short: "Convert an imported project into a Databricks App",
		Long: `Maps the analyzed project onto the target stack and generates the full
application tree: FastAPI routers, SQLModel records, pydantic schemas and
deployment configuration. Compatibility findings are reported but only
ERROR findings mark the project incompatible.

Example:
  lakeshift convert proj_abc123def456`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			projectID := args[0]

			record, err := service.Convert(cmd.Context(), projectID)
			if err != nil {
				fail(err)
			}

			output.Success(fmt.Sprintf("Converted project: %s", record.Project.Name))
			output.Step(fmt.Sprintf("Output written to %s", record.OutputDir))

			report := record.Report
			if report.Compatible {
				output.Info("Compatible: no blocking findings")
			} else {
				output.Error(fmt.Sprintf("Incompatible: %d blocking findings", report.Summary.Errors))
			}
			for _, diag := range report.Diagnostics {
				line := fmt.Sprintf("[%s] %s", diag.Category, diag.Message)
				switch diag.Severity {
				case ir.SeverityError:
					output.Error(line)
				case ir.SeverityWarning:
					output.Warn(line)
				default:
					output.Verbose(line)
				}
			}

			if record.Conversions != nil && record.Conversions.Total > 0 {
				output.Info(fmt.Sprintf("Model conversions: %d", record.Conversions.Total))
				for _, rec := range record.Conversions.Records {
					output.Step(fmt.Sprintf("%s → %s", rec.SourceModel, rec.TargetEndpoint))
				}
			}

			output.Info("Next steps:")
			output.Step(fmt.Sprintf("lakeshift deploy %s", projectID))
		},
	}

	return cmd
}
