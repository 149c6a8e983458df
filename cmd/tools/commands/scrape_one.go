package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ski-search/internal/export"
	"ski-search/internal/scraper"
)

var scrapeOneFlags struct {
	timeout time.Duration
}

func init() {
	scrapeOneCmd.Flags().DurationVar(&scrapeOneFlags.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.AddCommand(scrapeOneCmd)
}

var scrapeOneCmd = &cobra.Command{
	Use:   "scrape-one <resort-url>",
	Short: "Fetches a single resort page and prints the extracted record.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resortURL := strings.TrimSpace(args[0])
		fetcher := scraper.NewHTTPFetcher(scraper.FetcherOptions{Timeout: scrapeOneFlags.timeout})

		r, err := scraper.New(fetcher, nil, scraper.Config{}).ScrapeResort(cmd.Context(), resortURL)
		if err != nil {
			return err
		}
		return export.WriteJSON(cmd.OutOrStdout(), r)
	},
}
