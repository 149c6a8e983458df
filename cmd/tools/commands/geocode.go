package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ski-search/internal/db"
	"ski-search/internal/scraper"
)

var geocodeFlags struct {
	dbPath    string
	nominatim string
	limit     int
}

func init() {
	geocodeCmd.Flags().StringVar(&geocodeFlags.dbPath, "db", "data/resorts.db", "SQLite database to update")
	geocodeCmd.Flags().StringVar(&geocodeFlags.nominatim, "nominatim", "", "Nominatim base URL (default public instance)")
	geocodeCmd.Flags().IntVar(&geocodeFlags.limit, "limit", 0, "Stop after this many lookups (0 = no limit)")
	rootCmd.AddCommand(geocodeCmd)
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode [--db resorts.db]",
	Short: "Looks up coordinates for stored resorts that have none.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(geocodeFlags.dbPath); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		database, err := db.New(geocodeFlags.dbPath)
		if err != nil {
			return err
		}
		defer database.Close()

		resorts, err := database.ListResorts(db.ResortFilter{})
		if err != nil {
			return err
		}

		geocoder := scraper.NewGeocoder(geocodeFlags.nominatim)
		var looked, updated int
		for i := range resorts {
			r := &resorts[i]
			if r.HasCoordinates() {
				continue
			}
			if geocodeFlags.limit > 0 && looked >= geocodeFlags.limit {
				break
			}
			looked++

			ok, err := geocoder.GeocodeResort(cmd.Context(), r)
			if err != nil {
				if ctxErr := cmd.Context().Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, scraper.ErrNoGeocodeResult) {
					log.Warn().Err(err).Str("resort", r.Name).Msg("Geocoding failed")
				}
				continue
			}
			if !ok {
				continue
			}
			if err := database.UpdateCoordinates(r.ID, *r.Latitude, *r.Longitude); err != nil {
				return err
			}
			updated++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Geocoded %d of %d resorts without coordinates\n", updated, looked)
		return nil
	},
}
