package output

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// ErrUnsupportedFormat is returned when no formatter matches the requested format.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// extensionFor maps a canonical formatter name to its file extension.
func extensionFor(name string) string {
	switch {
	case strings.Contains(name, "csv"):
		return "csv"
	case strings.HasPrefix(name, "console"):
		return "txt"
	default:
		return name
	}
}

// GenerateReport writes the report in the requested format to dir and returns the written paths.
// "all" writes the verbose console, detailed CSV and HTML reports.
func GenerateReport(report *domain.ProjectionReport, format, dir string) ([]string, error) {
	if NormalizeFormatName(format) == "all" {
		var paths []string
		for _, f := range []Formatter{ConsoleVerboseFormatter{}, CSVDetailedExporter{}, HTMLFormatter{}} {
			p, err := WriteFormatted(f, report, dir, extensionFor(f.Name()))
			if err != nil {
				return paths, err
			}
			paths = append(paths, p)
		}
		return paths, nil
	}

	f := GetFormatterByName(format)
	if f == nil {
		// enrich error with available formatters and aliases
		return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	p, err := WriteFormatted(f, report, dir, extensionFor(f.Name()))
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}

// SaveConfiguration writes config as YAML.
func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
