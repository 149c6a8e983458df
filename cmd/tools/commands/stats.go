package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ski-search/internal/stats"
)

var statsSource source

func init() {
	statsSource.register(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

var statsCmd = &cobra.Command{
	Use:   "stats [--in raw.json | --db resorts.db]",
	Short: "Prints summary statistics for scraped resorts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := statsSource.load()
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), stats.Summarize(raw))
		return nil
	},
}

func printSummary(w io.Writer, s stats.Summary) {
	t := newTable(w)
	t.SetTitle("Resorts")
	t.AppendRows([]table.Row{
		{"Total records", s.Total},
		{"With a name", s.Named},
		{"With elevation", s.WithElevation},
		{"With slope km", s.WithSlopes},
		{"Geocoded", s.Geocoded},
		{"Average rating", optional(s.AvgRating, "%.2f")},
		{"Average day pass", optional(s.AvgDayPass, "%.2f")},
	})
	t.Render()

	for _, g := range []struct {
		title  string
		groups []stats.Group
	}{
		{"Country", s.ByCountry},
		{"State", s.ByState},
	} {
		if len(g.groups) == 0 {
			continue
		}
		t := newTable(w)
		t.AppendHeader(table.Row{g.title, "Resorts"})
		for _, row := range g.groups {
			t.AppendRow(table.Row{row.Name, row.Count})
		}
		t.Render()
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
