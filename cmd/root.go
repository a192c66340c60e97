package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	noPrompt bool
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands:
// it runs the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "tinysh",
	Short: "A tiny shell with job control",
	Long: `An interactive command interpreter with POSIX-style job control:
jobs run in their own process groups and can be moved between the
foreground, background and stopped states with jobs, bg, fg, kill,
and the keyboard interrupt and suspend keys.`,
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.Flags().BoolVarP(&noPrompt, "no-prompt", "p", false, "do not emit a command prompt")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print additional diagnostic information")
}
