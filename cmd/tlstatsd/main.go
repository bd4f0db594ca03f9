package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tlstats/tlstats/cmd/tlstatsd/run"
)

// These variables are populated via the Go linker.
var (
	version string
	commit  string
	branch  string
)

func init() {
	// If commit, branch, or version are not set, make that clear.
	if version == "" {
		version = "unknown"
	}
	if commit == "" {
		commit = "unknown"
	}
	if branch == "" {
		branch = "unknown"
	}
}

func main() {
	mainCmd := getCommand()
	mainCmd.AddCommand(run.GetCommand())
	mainCmd.AddCommand(run.GetConfigCommand())
	mainCmd.AddCommand(printBuildInfo())

	if err := mainCmd.Execute(); err != nil {
		fmt.Printf("Error: %+v\n", err)
		os.Exit(1)
	}
}

func getCommand() *cobra.Command {
	return &cobra.Command{
		Use:  "tlstatsd [command]",
		Long: "tlstatsd runs the thread-local stats aggregation daemon.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
}

func printBuildInfo() *cobra.Command {
	return &cobra.Command{
		Use:  "version",
		Long: "displays the tlstatsd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tlstatsd v%s (git: %s %s)\n", version, branch, commit)
		},
	}
}
