package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ripple/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Ripple pipeline type solver",
	Long:  `Ripple resolves the types of pipeline description units and reports conflicts`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-phase timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum diagnostics kept per unit (0=config default)")
	rootCmd.PersistentFlags().String("trace", "", "trace level (off|phase|detail|debug), written to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
