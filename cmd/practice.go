package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ccnaprep/ccnaprep/internal/app"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start a practice session (each answer is checked immediately)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.StartPractice)
	},
}

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Start an exam (answers are graded when you finish)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, app.StartExam)
	},
}
