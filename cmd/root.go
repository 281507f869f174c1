/*
Copyright (c) 2026 moyaru <rbffo@icloud.com>
*/

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MOYARU/apiprobe/internal/app/scan"
	"github.com/MOYARU/apiprobe/internal/app/ui"
	"github.com/MOYARU/apiprobe/internal/config"
	"github.com/MOYARU/apiprobe/internal/endpoint"
	appver "github.com/MOYARU/apiprobe/internal/version"
)

var (
	version = appver.Value

	configPath      string
	timeoutMs       int
	retries         int
	followRedirects bool
	insecure        bool
	verbose         bool

	method     string
	headers    []string
	body       string
	tests      []string
	jsonOutput bool
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:   "apiprobe [url]",
	Short: "apiprobe checks a single API endpoint for common security weaknesses: missing authentication, sensitive data exposure, CORS misconfiguration, missing security headers and absent rate limiting.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := loadPolicy(cmd)
		if err != nil {
			return err
		}

		m, err := endpoint.ParseMethod(method)
		if err != nil {
			return err
		}
		hdrs, err := parseHeaders(headers)
		if err != nil {
			return err
		}
		spec := endpoint.Spec{URL: args[0], Method: m, Headers: hdrs}
		if cmd.Flags().Changed("body") {
			spec.Body = &body
		}

		ctx, cancel := ui.WaitForCancel(cmd.Context())
		defer cancel()

		_, err = scan.RunScan(ctx, scan.Options{
			Endpoint:   spec,
			Tests:      splitTests(tests),
			Policy:     policy,
			JSONOutput: jsonOutput,
			OutputDir:  ".",
			AssumeYes:  assumeYes,
			Logger:     slog.Default(),
			Out:        cmd.OutOrStdout(),
		})
		return err
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ui.ColorRed, err, ui.ColorReset)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultPolicyPath, "Scan policy file (YAML)")
	pf.IntVar(&timeoutMs, "timeout", 0, "Per-request timeout in milliseconds (default from policy: 30000)")
	pf.IntVar(&retries, "retries", 0, "Retries for transport errors (default from policy: 0)")
	pf.BoolVar(&followRedirects, "follow-redirects", false, "Follow redirects within the target's domain")
	pf.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	f := rootCmd.Flags()
	f.StringVarP(&method, "method", "X", "GET", "HTTP method (GET, POST, PUT, DELETE, PATCH)")
	f.StringArrayVarP(&headers, "header", "H", nil, "Request header (Key: Value), repeatable")
	f.StringVarP(&body, "body", "d", "", "Raw request body (JSON unless Content-Type says otherwise)")
	f.StringSliceVarP(&tests, "tests", "t", nil, "Probe ids to run, comma-separated (default: all)")
	f.BoolVar(&jsonOutput, "json", false, "Save the report as JSON")
	f.BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before the rate-limit burst")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rootCmd.AddCommand(probesCmd, serveCmd)

	rootCmd.Long = ui.AsciiArt + `
apiprobe is a lightweight, defensive API security checker.

Usage:
   apiprobe [url] [flags]
   apiprobe probes
   apiprobe serve --addr :8080

Example:
  apiprobe https://api.example.com/users
  apiprobe https://api.example.com/users -H "Authorization: Bearer <token>"
  apiprobe https://api.example.com/orders -X POST -d '{"id":1}' --tests auth-check,cors-check
  apiprobe https://api.example.com/users --json --yes

This tool is intended for security testing on assets you own or have explicit permission to test.
`
}

// loadPolicy reads the policy file and lets explicitly set flags override it.
func loadPolicy(cmd *cobra.Command) (config.ScanPolicy, error) {
	policy, err := config.LoadScanPolicy(configPath)
	if err != nil {
		return policy, err
	}
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		policy.TimeoutMs = timeoutMs
	}
	if flags.Changed("retries") {
		policy.Retries = retries
	}
	if flags.Changed("follow-redirects") {
		policy.FollowRedirects = followRedirects
	}
	if flags.Changed("insecure") {
		policy.InsecureSkipVerify = insecure
	}
	policy.Normalize()
	return policy, nil
}

func parseHeaders(raw []string) (endpoint.Headers, error) {
	out := make(endpoint.Headers, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
		}
		out = out.With(name, strings.TrimSpace(value))
	}
	return out, nil
}

func splitTests(raw []string) []string {
	var out []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
