package commands

import (
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ski-search/internal/config"
	"ski-search/internal/export"
	"ski-search/internal/normalize"
)

var convertFlags struct {
	src        source
	profile    string
	jsonOut    string
	tsOut      string
	exportName string
	typeImport string
}

func init() {
	f := convertCmd.Flags()
	convertFlags.src.register(convertCmd)
	f.StringVar(&convertFlags.profile, "profile", "", "Conversion profile: alpine or usa (default from SCRAPE_CONFIG, else alpine)")
	f.StringVar(&convertFlags.jsonOut, "json", "", "Write converted JSON to this file")
	f.StringVar(&convertFlags.tsOut, "ts", "", "Write a TypeScript module to this file")
	f.StringVar(&convertFlags.exportName, "export-name", "scrapedSkiResorts", "Exported constant name in the TypeScript module")
	f.StringVar(&convertFlags.typeImport, "type-import", "../types/ski-resort", "Module the SkiResort type is imported from (empty to omit)")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert [--in raw.json | --db resorts.db] [--json out.json] [--ts out.ts]",
	Short: "Converts raw scraped records into the front-end resort format.",
	Long:  "Converts raw scraped records into the front-end resort format. Without --json or --ts the JSON is written to stdout.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := convertFlags.profile
		if name == "" {
			name = config.ProfileName(config.Load().ScrapeConfig)
		}
		profile, err := normalize.ProfileByName(name)
		if err != nil {
			return err
		}
		raw, err := convertFlags.src.load()
		if err != nil {
			return err
		}

		resorts := normalize.NewConverter(profile).Convert(raw)
		log.Info().Int("raw", len(raw)).Int("converted", len(resorts)).Str("profile", profile.Name).Msg("converted resorts")

		if convertFlags.jsonOut == "" && convertFlags.tsOut == "" {
			return export.WriteJSON(cmd.OutOrStdout(), resorts)
		}
		if convertFlags.jsonOut != "" {
			err := export.WriteFile(convertFlags.jsonOut, func(w io.Writer) error {
				return export.WriteJSON(w, resorts)
			})
			if err != nil {
				return err
			}
			log.Info().Str("path", convertFlags.jsonOut).Msg("wrote JSON")
		}
		if convertFlags.tsOut != "" {
			opts := export.TypeScriptOptions{
				ExportName:  convertFlags.exportName,
				TypeImport:  convertFlags.typeImport,
				GeneratedAt: time.Now(),
			}
			err := export.WriteFile(convertFlags.tsOut, func(w io.Writer) error {
				return export.WriteTypeScript(w, resorts, opts)
			})
			if err != nil {
				return err
			}
			log.Info().Str("path", convertFlags.tsOut).Msg("wrote TypeScript module")
		}
		return nil
	},
}
