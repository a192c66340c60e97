package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tinysh/tinysh/core"
	"github.com/tinysh/tinysh/core/config"
)

func runShell(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configuration, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if verbose {
		configuration.Verbose = true
	}

	shell, err := core.NewShell(configuration)
	if err != nil {
		return err
	}
	shell.NoPrompt = noPrompt

	code := shell.Run()
	shell.Close()
	os.Exit(code)
	return nil
}
