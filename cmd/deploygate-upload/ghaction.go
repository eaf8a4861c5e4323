package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeployGate/deploygate-upload-github-action/internal/ghaction"
)

func ghactionCmd() *cobra.Command {
	var (
		appFilePath string
		version     string
		outputPath  string
		force       bool
		stdout      bool
	)

	cmd := &cobra.Command{
		Use:   "ghaction",
		Short: "Scaffold a GitHub Actions workflow that uploads on every PR",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ghaction.WorkflowConfig{
				AppFilePath:   appFilePath,
				ActionVersion: version,
			}
			if cfg.AppFilePath == "" {
				cfg = ghaction.DefaultWorkflowConfig()
				cfg.ActionVersion = version
			}

			if stdout {
				content, err := ghaction.Generate(cfg)
				if err != nil {
					return err
				}
				fmt.Print(content)
				return nil
			}

			if err := ghaction.WriteWorkflow(cfg, outputPath, force); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", outputPath)
			fmt.Println("Next: add the DEPLOYGATE_API_KEY secret and the DEPLOYGATE_OWNER variable to the repository.")
			return nil
		},
	}

	cmd.Flags().StringVar(&appFilePath, "file", "", "path of the built binary within the workspace")
	cmd.Flags().StringVar(&version, "version", "", "pin a release of this tool (default: latest)")
	cmd.Flags().StringVar(&outputPath, "output", ".github/workflows/deploygate-upload.yml", "where to write the workflow")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing workflow file")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the workflow instead of writing it")

	return cmd
}
