// Package report renders the per-airport weather table and the run
// summary. It consumes the engine's outcome mapping and statistics and
// has no say in how they were produced.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/flightwx/flightwx/internal/engine"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// unavailableLabel is shown for airports whose weather could not be resolved.
const unavailableLabel = "weather unavailable"

// Renderer writes weather reports to a single destination.
type Renderer struct {
	w     io.Writer
	color bool

	titleStyle lipgloss.Style
	okStyle    lipgloss.Style
	failStyle  lipgloss.Style
}

// NewRenderer creates a renderer. When color is false all styling is
// skipped, which keeps piped output clean.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{
		w:          w,
		color:      color,
		titleStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// RenderTable writes the weather table in dataset order followed by the
// run summary.
func (r *Renderer) RenderTable(airports []engine.Lookup, outcomes map[string]engine.Outcome, stats *engine.Stats) error {
	title := "Airport Weather Report"
	if r.color {
		title = r.titleStyle.Render(title)
	}
	if _, err := fmt.Fprintf(r.w, "\n%s\n\n", title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, "CODE\tAIRPORT\tTEMP\tCONDITION\tHUMIDITY\tWIND\tSOURCE\tSTATUS")

	for _, airport := range airports {
		outcome, ok := outcomes[engine.NormalizeCode(airport.Code)]
		if !ok || !outcome.OK() {
			fmt.Fprintf(tw, "%s\t%s\t-\t%s\t-\t-\t-\t%s\n",
				engine.NormalizeCode(airport.Code), airport.Name,
				unavailableLabel, r.status(false, failureReason(outcome)))
			continue
		}

		rec := outcome.Record
		fmt.Fprintf(tw, "%s\t%s\t%.1f°C\t%s\t%d%%\t%.1f m/s\t%s\t%s\n",
			rec.Code, rec.Name, rec.TemperatureC, rec.Condition,
			rec.Humidity, rec.WindSpeedMS, outcome.Origin, r.status(true, ""))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	return r.renderSummary(stats)
}

// renderSummary writes the run statistics footer.
func (r *Renderer) renderSummary(stats *engine.Stats) error {
	tw := tabwriter.NewWriter(r.w, 0, 0, tabwriterPadding, ' ', 0)

	fmt.Fprintf(tw, "\nRun Summary (%s)\n", stats.RunID)
	fmt.Fprintf(tw, "  Airports:\t%d\n", stats.TotalLookups)
	fmt.Fprintf(tw, "  Resolved:\t%d\n", stats.Successes)
	fmt.Fprintf(tw, "  Unavailable:\t%d\n", stats.Failures)
	fmt.Fprintf(tw, "  Cache hits:\t%d (memory %d, persistent %d)\n",
		stats.CacheHits(), stats.MemoryHits, stats.DurableHits)
	fmt.Fprintf(tw, "  Hit rate:\t%.1f%%\n", stats.HitRate()*100)
	fmt.Fprintf(tw, "  Network fetches:\t%d\n", stats.NetworkFetches)
	fmt.Fprintf(tw, "  Elapsed:\t%s\n", stats.Elapsed.Round(time.Millisecond))

	return tw.Flush()
}

// status renders the per-row status cell.
func (r *Renderer) status(ok bool, reason string) string {
	if ok {
		if r.color {
			return r.okStyle.Render("ok")
		}
		return "ok"
	}

	label := "failed"
	if reason != "" {
		label = "failed (" + reason + ")"
	}
	if r.color {
		return r.failStyle.Render(label)
	}
	return label
}

// failureReason extracts the reason tag from a failed outcome.
func failureReason(outcome engine.Outcome) string {
	if outcome.Err == nil {
		return ""
	}
	return string(outcome.Err.Reason)
}

// jsonReport is the machine-readable report shape.
type jsonReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Airports    []engine.Outcome `json:"airports"`
	Stats       *engine.Stats    `json:"stats"`
}

// RenderJSON writes the outcomes and statistics as indented JSON, with
// airports in dataset order.
func (r *Renderer) RenderJSON(airports []engine.Lookup, outcomes map[string]engine.Outcome, stats *engine.Stats) error {
	ordered := make([]engine.Outcome, 0, len(airports))
	for _, airport := range airports {
		if outcome, ok := outcomes[engine.NormalizeCode(airport.Code)]; ok {
			ordered = append(ordered, outcome)
		}
	}

	doc := jsonReport{
		GeneratedAt: time.Now().UTC(),
		Airports:    ordered,
		Stats:       stats,
	}

	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
