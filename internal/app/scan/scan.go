package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/MOYARU/apiprobe/internal/app/output"
	"github.com/MOYARU/apiprobe/internal/app/ui"
	"github.com/MOYARU/apiprobe/internal/checks/registry"
	"github.com/MOYARU/apiprobe/internal/checks/scanner"
	"github.com/MOYARU/apiprobe/internal/config"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	"github.com/MOYARU/apiprobe/internal/engine"
	msges "github.com/MOYARU/apiprobe/internal/messages"
	"github.com/MOYARU/apiprobe/internal/report"
)

var ErrAborted = errors.New("scan aborted by user")

type Options struct {
	Endpoint   endpoint.Spec
	Tests      []string
	Policy     config.ScanPolicy
	JSONOutput bool
	OutputDir  string
	// AssumeYes skips the confirmation asked before the rate-limit burst.
	AssumeYes bool
	Logger    *slog.Logger
	Out       io.Writer
	// Confirm overrides the interactive prompt; nil uses ui.Confirm when
	// stdin is a terminal.
	Confirm func(prompt string) (bool, error)
}

// RunScan scans one endpoint, prints the findings and optionally saves the
// JSON report.
func RunScan(ctx context.Context, opts Options) (*report.ScanReport, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	spec := opts.Endpoint
	target, err := NormalizeTarget(spec.URL)
	if err != nil {
		return nil, err
	}
	spec.URL = target

	client := engine.NewClient(engine.OptionsFromPolicy(opts.Policy))
	scn, err := scanner.New(spec, opts.Tests, client,
		scanner.WithLogger(logger),
		scanner.WithRequestBudget(opts.Policy.RequestBudget))
	if err != nil {
		return nil, err
	}

	if runsRateLimit(scn) && !opts.AssumeYes {
		confirm := opts.Confirm
		if confirm == nil && ui.StdinIsTerminal() {
			confirm = ui.Confirm
		}
		if confirm != nil {
			fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorRed, msges.GetUIMessage("RateLimitWarning"), ui.ColorReset)
			fmt.Fprintf(out, "%s%s%s\n", ui.ColorYellow, msges.GetUIMessage("ScanPermission"), ui.ColorReset)
			ok, err := confirm(fmt.Sprintf("%s%s%s", ui.ColorYellow, msges.GetUIMessage("ScanPrompt"), ui.ColorReset))
			if err != nil || !ok {
				fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorYellow, msges.GetUIMessage("ScanAborted"), ui.ColorReset)
				return nil, ErrAborted
			}
		}
	}

	names := make([]string, 0, len(scn.Checks))
	for _, c := range scn.Checks {
		names = append(names, c.ID)
	}
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("Target", spec.Method, report.NewRedactor(opts.Policy.RedactionPatterns).URL(spec.URL)), ui.ColorReset)
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("SelectedProbes", strings.Join(names, ", ")), ui.ColorReset)
	fmt.Fprintf(out, "%s%s%s\n", ui.ColorGray, msges.GetUIMessage("ScanningCheck", len(scn.Checks)), ui.ColorReset)

	rep, err := scn.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s", msges.GetUIMessage("ScanFailed", spec.URL, err))
	}
	if ctx.Err() != nil {
		fmt.Fprintf(out, "%s%s%s\n", ui.ColorYellow, msges.GetUIMessage("ScanCancelled"), ui.ColorReset)
	}

	fmt.Fprintf(out, "\n%s%s%s\n", ui.ColorGreen, msges.GetUIMessage("ScanCompleteMsg"), ui.ColorReset)
	output.PrintFindings(out, rep.Findings)
	output.PrintScanSummary(out, rep, scn.Checks)

	if opts.JSONOutput {
		path, err := output.SaveJSONReport(opts.OutputDir, rep, report.NewRedactor(opts.Policy.RedactionPatterns))
		if err != nil {
			fmt.Fprintf(out, "[Error] %s\n", msges.GetUIMessage("JSONReportFailed", err))
		} else {
			fmt.Fprintf(out, "\n%s\n", msges.GetUIMessage("JSONReportSaved", path))
		}
	}
	return rep, nil
}

func runsRateLimit(s *scanner.Scanner) bool {
	for _, c := range s.Checks {
		if c.ID == registry.RateLimit {
			return true
		}
	}
	return false
}

// NormalizeTarget trims the target and defaults a missing scheme to https.
func NormalizeTarget(rawTarget string) (string, error) {
	target := strings.TrimSpace(rawTarget)
	if target == "" {
		return "", fmt.Errorf("%w: target is empty", endpoint.ErrInvalidURL)
	}

	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", endpoint.ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported URL scheme: %s (only http/https allowed)", endpoint.ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", endpoint.ErrInvalidURL)
	}
	return parsed.String(), nil
}
