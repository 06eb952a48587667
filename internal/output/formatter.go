package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rpgo/retirement-projector/internal/domain"
)

// Formatter renders a projection report. Implementations are pure and deterministic for a
// given report.
type Formatter interface {
	Format(report *domain.ProjectionReport) ([]byte, error)
	Name() string
}

// FormatterFunc lets a plain function act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.ProjectionReport) ([]byte, error)
}

func (ff FormatterFunc) Format(r *domain.ProjectionReport) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                                      { return ff.ID }

// WriteFormatted formats report and writes it to a timestamped file in dir.
func WriteFormatted(f Formatter, report *domain.ProjectionReport, dir, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	name := fmt.Sprintf("retirement_projection_%s.%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// registry maps canonical names to the built-in formatters.
var registry = indexFormatters(
	ConsoleVerboseFormatter{},
	ConsoleFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	HTMLFormatter{},
	JSONFormatter{},
)

func indexFormatters(fs ...Formatter) map[string]Formatter {
	m := make(map[string]Formatter, len(fs))
	for _, f := range fs {
		m[f.Name()] = f
	}
	return m
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"text":            "console",
	"summary":         "console-lite",
	"csv-detailed":    "detailed-csv",
	"csv-schedule":    "detailed-csv",
	"schedule":        "detailed-csv",
	"csv-summary":     "csv",
	"html-report":     "html",
}

// GetFormatterByName resolves name, after normalization and alias lookup, to a formatter.
// It returns nil for unknown names.
func GetFormatterByName(name string) Formatter {
	return registry[NormalizeFormatName(name)]
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names, sorted.
func AvailableFormatterNames() []string { return sortedKeys(registry) }

// AvailableFormatAliases returns the supported aliases, sorted.
func AvailableFormatAliases() []string { return sortedKeys(aliasMap) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedScenarios returns the scenarios ordered by name.
func sortedScenarios(report *domain.ProjectionReport) []domain.ScenarioResult {
	scenarios := append([]domain.ScenarioResult(nil), report.Scenarios...)
	sort.SliceStable(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios
}
