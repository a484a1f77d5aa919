package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"move-improve-workers/internal/report"
	"move-improve-workers/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a bundle JSON file without touching the store",
	Example: `  scorectl sample > bundle.json
  scorectl score --file bundle.json --format text`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringP("file", "f", "-", "Bundle JSON file, - for stdin")
	scoreCmd.Flags().String("format", "json", "Output format: json or text")
	scoreCmd.Flags().String("session", "offline", "Session id shown in the text report")
	scoreCmd.Flags().Bool("require-answers", false, "Reject unanswered questions that do not allow N/A")
}

func runScore(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	session, _ := cmd.Flags().GetString("session")
	requireAnswers, _ := cmd.Flags().GetBool("require-answers")

	if format != "json" && format != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}

	bundle, err := readBundle(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	var opts []scoring.Option
	if requireAnswers {
		opts = append(opts, scoring.WithRequiredAnswers())
	}
	res, err := scoring.NewEngine(opts...).Compute(bundle)
	if err != nil {
		cliLogger(cmd).Debug("bundle rejected", map[string]interface{}{"file": path, "error": err})
		return err
	}

	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return report.WriteText(cmd.OutOrStdout(), report.Input{
		SessionID:   session,
		GeneratedAt: time.Now(),
		Result:      res,
		Categories:  bundle.Categories,
	})
}

func readBundle(stdin io.Reader, path string) (*scoring.Bundle, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var b scoring.Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	return &b, nil
}
