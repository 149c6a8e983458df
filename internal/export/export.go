package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"ski-search/internal/models"
)

// TypeScriptOptions controls the generated module
type TypeScriptOptions struct {
	// ExportName is the exported constant, e.g. scrapedSkiResorts
	ExportName string
	// TypeImport is the module the SkiResort type is imported from; empty
	// skips the import and the type annotation
	TypeImport  string
	GeneratedAt time.Time
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteTypeScript writes converted resorts as a TypeScript module. With a
// TypeImport the array is annotated as SkiResort[] and carries only the
// interface's fields; without one it is a plain literal including the
// scraped extras.
func WriteTypeScript(w io.Writer, resorts []models.SkiResort, opts TypeScriptOptions) error {
	if opts.ExportName == "" {
		opts.ExportName = "scrapedSkiResorts"
	}
	if !identifier.MatchString(opts.ExportName) {
		return fmt.Errorf("invalid export name %q", opts.ExportName)
	}
	if resorts == nil {
		resorts = []models.SkiResort{}
	}
	// the SkiResort interface has no slot for scraped extras
	if opts.TypeImport != "" {
		typed := make([]models.SkiResort, len(resorts))
		for i, r := range resorts {
			r.Scraped = nil
			typed[i] = r
		}
		resorts = typed
	}

	var data bytes.Buffer
	if err := WriteJSON(&data, resorts); err != nil {
		return err
	}

	var b bytes.Buffer
	b.WriteString("// Auto-generated ski resort data from web scraping\n")
	fmt.Fprintf(&b, "// Generated on %s\n", opts.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("// Source: skiresort.info\n\n")
	annotation := ""
	if opts.TypeImport != "" {
		fmt.Fprintf(&b, "import { SkiResort } from '%s';\n\n", opts.TypeImport)
		annotation = ": SkiResort[]"
	}
	fmt.Fprintf(&b, "export const %s%s = %s;\n\n", opts.ExportName, annotation, bytes.TrimRight(data.Bytes(), "\n"))
	fmt.Fprintf(&b, "export default %s;\n", opts.ExportName)

	_, err := w.Write(b.Bytes())
	return err
}

// WriteRaw writes raw records as a JSON array. A nil slice is written as [].
func WriteRaw(w io.Writer, resorts []models.Resort) error {
	if resorts == nil {
		resorts = []models.Resort{}
	}
	return WriteJSON(w, resorts)
}

// ReadRaw decodes a JSON array of raw resort records
func ReadRaw(r io.Reader) ([]models.Resort, error) {
	var resorts []models.Resort
	if err := json.NewDecoder(r).Decode(&resorts); err != nil {
		return nil, fmt.Errorf("failed to decode resorts: %w", err)
	}
	return resorts, nil
}

// WriteFile writes path through a temporary file so readers never see a
// partial file
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
