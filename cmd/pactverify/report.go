package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/pactverify/internal/domain/compiler"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
)

type reportStyles struct {
	title   lipgloss.Style
	name    lipgloss.Style
	success lipgloss.Style
	fail    lipgloss.Style
	ignore  lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		name:    lipgloss.NewStyle().Width(30),
		success: lipgloss.NewStyle().Foreground(colorSuccess),
		fail:    lipgloss.NewStyle().Bold(true).Foreground(colorError),
		ignore:  lipgloss.NewStyle().Foreground(colorMuted),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
	}
}

var titleCaser = cases.Title(language.English)

// statusLabel renders a status as a title-cased word, e.g. "Success".
func statusLabel(s compiler.Status) string {
	return titleCaser.String(s.String())
}

func (s reportStyles) status(st compiler.Status) string {
	label := statusLabel(st)
	switch st {
	case compiler.StatusSuccess:
		return s.success.Render(label)
	case compiler.StatusFail:
		return s.fail.Render(label)
	default:
		return s.ignore.Render(label)
	}
}

// renderOutcomes prints one line per descriptor and the failure messages.
func renderOutcomes(w io.Writer, result compiler.Result) {
	st := newReportStyles()

	_, _ = fmt.Fprintln(w, st.title.Render("Verifier setup"))
	for _, o := range result.Outcomes {
		calls := ""
		if o.Calls > 0 {
			calls = st.muted.Render(fmt.Sprintf(" (%d calls)", o.Calls))
		}
		_, _ = fmt.Fprintf(w, "  %s %s%s\n", st.name.Render(o.Name.String()), st.status(o.Status), calls)
	}

	counts := result.Counts()
	_, _ = fmt.Fprintf(w, "\n%d succeeded, %d failed, %d ignored\n",
		counts[compiler.StatusSuccess], counts[compiler.StatusFail], counts[compiler.StatusIgnore])

	for _, msg := range result.Messages {
		_, _ = fmt.Fprintf(w, "  %s %s\n", st.fail.Render("✗"), msg)
	}
}

// renderTranscript prints the recorded setup calls.
func renderTranscript(w io.Writer, transcript string) {
	st := newReportStyles()
	_, _ = fmt.Fprintln(w, st.title.Render("Setup calls"))
	for _, line := range strings.Split(strings.TrimRight(transcript, "\n"), "\n") {
		if line == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}
}

// renderExplanations prints every setup call in execution order.
func renderExplanations(w io.Writer) {
	st := newReportStyles()
	for i, name := range compiler.ExecutionOrder() {
		e := compiler.Explain(name)
		_, _ = fmt.Fprintf(w, "%d. %s\n", i+1, st.title.Render(name.String()))
		_, _ = fmt.Fprintf(w, "   %s\n", e.Summary())
		_, _ = fmt.Fprintf(w, "   %s %s\n", st.muted.Render("applies if:"), e.AppliesIf())
		_, _ = fmt.Fprintf(w, "   %s %s\n", st.muted.Render("calls:"), e.Call())
	}
}

// renderReport prints the verification summary.
func renderReport(w io.Writer, report ports.VerificationReport) {
	st := newReportStyles()

	verdict := st.success.Render("Passed")
	if !report.Passed {
		verdict = st.fail.Render("Failed")
	}

	_, _ = fmt.Fprintf(w, "\n%s %s\n", st.title.Render("Verification"), verdict)
	_, _ = fmt.Fprintf(w, "  %d examples, %d failures, %d pending (%s)\n",
		report.ExampleCount, report.FailureCount, report.PendingCount, report.Duration)
	if report.Output != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", report.Output)
	}
}
