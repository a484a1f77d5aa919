package main

import (
	"github.com/spf13/cobra"

	"move-improve-workers/internal/scoring"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the seeded starter questionnaire as a bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := scoring.SampleBundle()
		b.Answers = []scoring.Answer{}
		return writeJSON(cmd.OutOrStdout(), b)
	},
}
