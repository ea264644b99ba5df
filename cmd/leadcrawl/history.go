package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/nao1215/leadcrawl/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [site]",
		Short: "List stored crawls",
		Long: `History lists the sites in the database, or the stored crawls of one site,
newest first.

Examples:
  # List every crawled site
  leadcrawl history

  # List the crawls of one site
  leadcrawl history acme.example

  # Delete a stored crawl
  leadcrawl history --delete 0b1c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("delete", "", "Delete the crawl with this run ID")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Database directory")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	deleteID, err := cmd.Flags().GetString("delete")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := openExistingDB(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case deleteID != "":
		if err := db.DeleteRun(ctx, deleteID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted crawl %s\n", deleteID)
		return nil
	case len(args) == 0:
		return listSites(ctx, db, out)
	default:
		return listRuns(ctx, db, out, args[0])
	}
}

func listSites(ctx context.Context, db *database.CrawlDB, out io.Writer) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(out, "No crawled sites found in the database.")
		fmt.Fprintln(out, "\nUse 'leadcrawl crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Fprintf(out, "Crawled sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(out, "  • %s\n", site)
	}
	fmt.Fprintln(out, "\nUse 'leadcrawl history <site>' to see the crawls of a site.")
	return nil
}

func listRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, site string) error {
	runs, err := db.ListRuns(ctx, site)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No crawl history found for %s\n", database.SiteKey(site))
		return nil
	}

	fmt.Fprintf(out, "Crawl history for %s (%d crawls):\n\n", database.SiteKey(site), len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %5s  %s\n", "Run ID", "Date", "Status", "Pages", "Leads")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 96))
	for _, run := range runs {
		t := run.Totals
		fmt.Fprintf(out, "  %-36s  %-19s  %-10s  %5d  E:%d P:%d T:%d S:%d\n",
			run.RunID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.StopReason,
			run.Pages,
			t.Emails, t.People, t.Phones, t.SocialPlatforms,
		)
	}
	fmt.Fprintln(out, "\nUse 'leadcrawl compare <site>' to compare the latest two crawls.")
	return nil
}
