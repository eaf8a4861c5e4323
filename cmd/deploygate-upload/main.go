package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deploygate-upload",
		Short: "Upload app binaries to DeployGate from CI",
		Long: "deploygate-upload uploads an APK/AAB/IPA to DeployGate and " +
			"posts the install link back on the pull request that " +
			"triggered the build.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(ghactionCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
