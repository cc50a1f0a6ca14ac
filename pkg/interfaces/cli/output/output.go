package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vsinha/bomengine/pkg/domain/entities"
	"github.com/vsinha/bomengine/pkg/domain/services"
)

// Format selects how a result is rendered
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, CSV, XLSX:
		return f, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Config holds configuration for output generation
type Config struct {
	Format  Format
	Verbose bool
	Elapsed time.Duration
}

// Explosion renders an explosion result in the configured format
func Explosion(w io.Writer, res *entities.ExplosionResult, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return explosionText(w, res, cfg)
	case JSON:
		return writeJSON(w, res)
	case CSV:
		return explosionCSV(w, res)
	case XLSX:
		f, err := ExplosionWorkbook(res)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Write(w)
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}

// Scale renders a scale result in the configured format
func Scale(w io.Writer, res *entities.ScaleResult, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return scaleText(w, res)
	case JSON:
		return writeJSON(w, res)
	case CSV:
		return scaleCSV(w, res)
	case XLSX:
		f, err := ScaleWorkbook(res)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Write(w)
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}

// ByProducts renders by-product expectations
func ByProducts(w io.Writer, exps []entities.ByProductExpectation, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return byProductsText(w, exps)
	case JSON:
		return writeJSON(w, exps)
	case CSV:
		return byProductsCSV(w, exps)
	default:
		return fmt.Errorf("unsupported output format for by-products: %s", cfg.Format)
	}
}

// Yield renders a yield analysis
func Yield(w io.Writer, res *entities.YieldAnalysis, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return yieldText(w, res)
	case JSON:
		return writeJSON(w, res)
	default:
		return fmt.Errorf("unsupported output format for yield: %s", cfg.Format)
	}
}

// Comparison renders a version comparison
func Comparison(w io.Writer, res *entities.BOMComparison, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return comparisonText(w, res)
	case JSON:
		return writeJSON(w, res)
	default:
		return fmt.Errorf("unsupported output format for comparison: %s", cfg.Format)
	}
}

// BOMs renders a BOM catalogue listing
func BOMs(w io.Writer, boms []*entities.BOM, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return bomsText(w, boms)
	case JSON:
		return writeJSON(w, boms)
	case CSV:
		return bomsCSV(w, boms)
	default:
		return fmt.Errorf("unsupported output format for bom list: %s", cfg.Format)
	}
}

// History renders recorded by-product outputs
func History(w io.Writer, records []entities.ByProductRecord, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return historyText(w, records)
	case JSON:
		return writeJSON(w, records)
	default:
		return fmt.Errorf("unsupported output format for by-product history: %s", cfg.Format)
	}
}

// Validation renders a catalogue validation report
func Validation(w io.Writer, res *services.ValidationResult, cfg Config) error {
	switch cfg.Format {
	case Text, "":
		return validationText(w, res)
	case JSON:
		return writeJSON(w, res)
	default:
		return fmt.Errorf("unsupported output format for validation: %s", cfg.Format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
