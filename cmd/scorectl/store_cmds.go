package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"move-improve-workers/internal/report"
	"move-improve-workers/internal/scoring"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the assessment tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		records, closeFn, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := records.Migrate(cmd.Context()); err != nil {
			return err
		}
		cliLogger(cmd).Info("schema applied", map[string]interface{}{"database": cfg.Database.Postgres.Database})
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List questionnaire versions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Scoring.VersionPageSize
		}

		records, closeFn, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		versions, err := records.ListVersions(cmd.Context(), limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tVERSION\tACTIVE\tDESCRIPTION")
		for _, v := range versions {
			fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", v.ID, v.Version, v.IsActive, v.Description)
		}
		return tw.Flush()
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <session-id>",
	Short: "Render the stored result of a session as text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		records, closeFn, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		stored, err := records.GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		categories, err := records.Categories(cmd.Context(), stored.VersionID)
		if err != nil {
			return err
		}
		return report.WriteText(cmd.OutOrStdout(), report.Input{
			SessionID:   stored.SessionID,
			CreatedAt:   stored.CreatedAt,
			GeneratedAt: time.Now(),
			Result:      stored.Result,
			Categories:  categories,
		})
	},
}

func init() {
	versionsCmd.Flags().Int("limit", 0, "Maximum versions to list (defaults to scoring.version_page_size)")

	seedCmd.Flags().StringP("file", "f", "", "Bundle JSON file, - for stdin (defaults to the starter questionnaire)")
	seedCmd.Flags().String("session", "", "Also create a response session with the bundle's answers")
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a questionnaire version, and optionally a session, into the store",
	Long: `seed writes the version records of a bundle (the starter questionnaire when
--file is omitted). With --session, the bundle's answers are stored as a new
response session on that version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		bundle := scoring.SampleBundle()
		if path, _ := cmd.Flags().GetString("file"); path != "" {
			if bundle, err = readBundle(cmd.InOrStdin(), path); err != nil {
				return err
			}
		}

		records, closeFn, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := records.SeedVersion(cmd.Context(), bundle); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %s seeded\n", bundle.Version.ID)

		session, _ := cmd.Flags().GetString("session")
		if session == "" {
			return nil
		}
		if err := records.CreateSession(cmd.Context(), session, bundle.Version.ID, bundle.Answers); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s created with %d answers\n", session, len(bundle.Answers))
		return nil
	},
}
