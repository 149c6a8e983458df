package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ski-search/internal/db"
	"ski-search/internal/export"
	"ski-search/internal/models"
)

// source selects where raw records are read from
type source struct {
	in     string
	dbPath string
}

func (s *source) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.in, "in", "data/resorts_raw.json", "Raw JSON file written by the scraper")
	cmd.Flags().StringVar(&s.dbPath, "db", "", "Read from this SQLite database instead of --in")
}

func (s *source) load() ([]models.Resort, error) {
	if s.dbPath != "" {
		if _, err := os.Stat(s.dbPath); err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		database, err := db.New(s.dbPath)
		if err != nil {
			return nil, err
		}
		defer database.Close()
		return database.ListResorts(db.ResortFilter{})
	}

	if s.in == "" {
		return nil, errors.New("one of --in or --db is required")
	}
	f, err := os.Open(s.in)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw data: %w", err)
	}
	defer f.Close()
	return export.ReadRaw(f)
}
