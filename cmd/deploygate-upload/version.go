package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DeployGate/deploygate-upload-github-action/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Version)
		},
	}
}
