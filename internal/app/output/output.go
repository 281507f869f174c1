package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MOYARU/apiprobe/internal/app/ui"
	"github.com/MOYARU/apiprobe/internal/checks"
	"github.com/MOYARU/apiprobe/internal/jsonutil"
	msges "github.com/MOYARU/apiprobe/internal/messages"
	"github.com/MOYARU/apiprobe/internal/report"
)

// PrintFindings writes findings in report order, one block per probe.
func PrintFindings(w io.Writer, findings []report.Finding) {
	fmt.Fprintf(w, "\n%s\n", ui.TitleStyle.Render(msges.GetUIMessage("ConsoleFindingsTitle")))
	for _, f := range findings {
		status := ui.StatusStyle(f.Status).Render(strings.ToUpper(string(f.Status)))
		line := fmt.Sprintf("[%s] %s", status, f.Name)
		if f.Severity != "" {
			line += " " + ui.SeverityStyle(f.Severity).Render("("+string(f.Severity)+")")
		}
		fmt.Fprintf(w, "\n%s\n", line)
		fmt.Fprintf(w, " - %s\n", f.Description)
		if f.Details != "" {
			label := msges.GetUIMessage("ConsoleDetailsLabel")
			for i, detail := range strings.Split(f.Details, "\n") {
				if i == 0 {
					fmt.Fprintf(w, " - %s: %s\n", label, ui.MutedStyle.Render(detail))
					continue
				}
				fmt.Fprintf(w, "   %s%s\n", strings.Repeat(" ", len(label)+2), ui.MutedStyle.Render(detail))
			}
		}
	}
}

// PrintScanSummary writes finding counts, baseline facts and per-probe
// traffic.
func PrintScanSummary(w io.Writer, rep *report.ScanReport, probes []checks.Check) {
	summary := rep.Summarize()
	fmt.Fprintf(w, "\n%s\n", ui.TitleStyle.Render(msges.GetUIMessage("ConsoleScanSummaryTitle")))
	fmt.Fprintln(w, msges.GetUIMessage("ConsoleSummaryLine", summary.Passed, summary.Failed, summary.Warning))
	if summary.Highest != "" {
		fmt.Fprintln(w, msges.GetUIMessage("ConsoleHighestSeverity", ui.SeverityStyle(summary.Highest).Render(string(summary.Highest))))
	} else if summary.Failed == 0 && summary.Warning == 0 {
		fmt.Fprintln(w, ui.PassStyle.Render(msges.GetUIMessage("ConsoleNoIssues")))
	}
	if rep.StatusCode != nil {
		fmt.Fprintln(w, msges.GetUIMessage("ConsoleStatusCode", *rep.StatusCode))
	}
	if rep.ResponseTimeMs != nil {
		fmt.Fprintln(w, msges.GetUIMessage("ConsoleResponseTime", *rep.ResponseTimeMs))
	}

	ids := make([]string, 0, len(rep.ProbeStats))
	for _, c := range probes {
		if _, ok := rep.ProbeStats[c.ID]; ok {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		for id := range rep.ProbeStats {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	for _, id := range ids {
		st := rep.ProbeStats[id]
		fmt.Fprintln(w, ui.MutedStyle.Render(" "+msges.GetUIMessage("ConsoleProbeStat", id, st.Requests, st.DurationMs)))
	}
}

// JSONReport is the document written by SaveJSONReport.
type JSONReport struct {
	report.ScanReport `json:",inline"`
	Summary           report.Summary `json:"summary"`
}

// SaveJSONReport writes rep to dir as apiprobe_report_<timestamp>.json with
// credentials redacted and returns the file path.
func SaveJSONReport(dir string, rep *report.ScanReport, redactor *report.Redactor) (string, error) {
	if redactor == nil {
		redactor = report.NewRedactor(nil)
	}
	redacted := redactor.Report(rep)
	doc := JSONReport{ScanReport: *redacted, Summary: redacted.Summarize()}

	timestamp := rep.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	filename := filepath.Join(dir, fmt.Sprintf("apiprobe_report_%s.json", timestamp.Local().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := jsonutil.Encode(file, doc); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return filename, nil
}
