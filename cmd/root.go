package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "ccnaprep",
	Short: "CCNA exam practice in the terminal",
	Long: `ccnaprep presents CCNA practice questions and checks answers against a
verification server. Practice mode grades each answer as you go; exam mode
grades everything at the end.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.StartHome)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func addGlobalFlags(c *cobra.Command) {
	pf := c.PersistentFlags()
	pf.String("config", "", "Path to config file (overrides CCNAPREP_CONFIG env var)")
	pf.String("bank", "", "Path to the question bank, YAML or JSON (overrides CCNAPREP_BANK)")
	pf.String("server", "", "Verification server URL (overrides CCNAPREP_SERVER)")
	pf.String("db", "", "Path to SQLite history database (overrides CCNAPREP_DB)")
	pf.String("log-file", "", "Path to the log file (overrides CCNAPREP_LOG_FILE)")
	pf.Duration("timeout", 0, "Verification timeout, e.g. 8s (overrides CCNAPREP_TIMEOUT)")
	pf.Bool("shuffle", false, "Shuffle question order each session")
	pf.Bool("no-history", false, "Do not record answers in the history database")
}
