package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/charmbracelet/lipgloss"
	"github.com/fulmenhq/starcat/internal/assets"
	"github.com/fulmenhq/starcat/pkg/ascii"
	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputFormat selects how a Report is rendered
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
)

// ParseOutputFormat accepts text, json, markdown (or md).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (want text, json or markdown)", s)
	}
}

const reportTemplate = "validate-report.md.hbs"

// Formatter renders validation reports
type Formatter struct {
	format  OutputFormat
	noColor bool
}

// NewFormatter creates a new report formatter
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// SetNoColor disables styling in text output
func (f *Formatter) SetNoColor(noColor bool) {
	f.noColor = noColor
}

// Write renders report to w in the configured format
func (f *Formatter) Write(w io.Writer, report *Report) error {
	switch f.format {
	case FormatText, "":
		_, err := io.WriteString(w, f.formatText(w, report))
		return err
	case FormatJSON:
		out, err := formatJSON(report)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case FormatMarkdown:
		out, err := formatMarkdown(report)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func formatJSON(report *Report) ([]byte, error) {
	// empty slices render as [] rather than null
	out := *report
	if out.Findings.Violations == nil {
		out.Findings.Violations = []catalog.Finding{}
	}
	if out.Findings.Warnings == nil {
		out.Findings.Warnings = []catalog.Finding{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format JSON: %v", err)
	}
	return append(data, '\n'), nil
}

func formatMarkdown(report *Report) (string, error) {
	tpl, err := assets.GetTemplate(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to load report template: %w", err)
	}
	out, err := raymond.Render(string(tpl), markdownContext(report))
	if err != nil {
		return "", fmt.Errorf("failed to render report template: %w", err)
	}
	return out, nil
}

func markdownContext(report *Report) map[string]interface{} {
	findings := func(list []catalog.Finding) []map[string]interface{} {
		out := make([]map[string]interface{}, 0, len(list))
		for _, f := range list {
			out = append(out, map[string]interface{}{
				"entry":   f.Entry,
				"field":   f.Field,
				"message": f.Message,
			})
		}
		return out
	}
	counts := func(list []Count) []map[string]interface{} {
		out := make([]map[string]interface{}, 0, len(list))
		for _, c := range list {
			out = append(out, map[string]interface{}{"label": c.Label, "count": c.Count})
		}
		return out
	}
	return map[string]interface{}{
		"catalog":  report.Catalog,
		"textures": report.Textures,
		"ok":       report.OK,
		"summary": map[string]interface{}{
			"total":    report.Summary.Total,
			"issues":   report.Summary.Issues,
			"warnings": report.Summary.Warnings,
		},
		"violations":   findings(report.Findings.Violations),
		"warnings":     findings(report.Findings.Warnings),
		"byType":       counts(report.Summary.ByType),
		"byRenderMode": counts(report.Summary.ByRenderMode),
	}
}

func (f *Formatter) formatText(w io.Writer, report *Report) string {
	r := lipgloss.NewRenderer(w)
	if f.noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	bold := r.NewStyle().Bold(true)
	fail := r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	pass := r.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	warn := r.NewStyle().Foreground(lipgloss.Color("226"))
	rule := strings.Repeat("-", 70)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Validating %d objects...\n\n", report.Summary.Total)
	sb.WriteString(rule + "\n\n")

	if len(report.Findings.Violations) > 0 {
		sb.WriteString(fail.Render(fmt.Sprintf("✗ VALIDATION FAILED - %d issue(s) found:", len(report.Findings.Violations))))
		sb.WriteString("\n\n")
		for _, v := range report.Findings.Violations {
			sb.WriteString("  • " + v.String() + "\n")
		}
	} else {
		sb.WriteString(pass.Render(fmt.Sprintf("✓ All %d objects validated successfully!", report.Summary.Total)))
		sb.WriteString("\n")
	}

	if len(report.Findings.Warnings) > 0 {
		sb.WriteString("\n")
		sb.WriteString(warn.Render(fmt.Sprintf("⚠ %d warning(s):", len(report.Findings.Warnings))))
		sb.WriteString("\n\n")
		for _, v := range report.Findings.Warnings {
			sb.WriteString("  • " + v.String() + "\n")
		}
	}

	sb.WriteString("\n" + rule + "\n\n")
	sb.WriteString(bold.Render("Summary:") + "\n")
	sb.WriteString(ascii.Box([]string{
		fmt.Sprintf("Total objects: %d", report.Summary.Total),
		fmt.Sprintf("Issues: %d", report.Summary.Issues),
		fmt.Sprintf("Warnings: %d", report.Summary.Warnings),
	}))

	if len(report.Summary.ByType) > 0 {
		sb.WriteString("\n" + bold.Render("Objects by type:") + "\n")
		sb.WriteString(ascii.Table("    ", countRows(report.Summary.ByType)))
	}
	if len(report.Summary.ByRenderMode) > 0 {
		sb.WriteString("\n" + bold.Render("Objects by renderMode:") + "\n")
		sb.WriteString(ascii.Table("    ", countRows(report.Summary.ByRenderMode)))
	}
	return sb.String()
}

// DisplayLabel turns a type or render mode value into a heading label
// ("star_cluster" becomes "Star Cluster").
func DisplayLabel(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

func countRows(counts []Count) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{DisplayLabel(c.Label), fmt.Sprint(c.Count)})
	}
	return rows
}
