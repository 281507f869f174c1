package messages

import (
	"fmt"
)

type MessageDetail struct {
	Title   string
	Message string
	Fix     string
}

type rawMessageDetail struct {
	TitleEN   string
	MessageEN string
	FixEN     string
}

var findingMessages = map[string]rawMessageDetail{
	"AUTH_ENFORCED": {
		TitleEN:   "Authentication Enforced",
		MessageEN: "Endpoint correctly rejects requests without authentication.",
	},
	"AUTH_BYPASS": {
		TitleEN:   "Authentication Bypass",
		MessageEN: "Endpoint accessible without authentication.",
		FixEN:     "Require valid credentials for this endpoint and reject anonymous requests with 401 Unauthorized.",
	},
	"AUTH_INCONCLUSIVE": {
		TitleEN:   "Authentication Inconclusive",
		MessageEN: "Unexpected response (status %d) when authentication was removed.",
		FixEN:     "Verify manually that the endpoint enforces authentication.",
	},
	"SENSITIVE_DATA_FOUND": {
		TitleEN:   "Sensitive Data Exposure",
		MessageEN: "Potentially sensitive data found in response.",
		FixEN:     "Remove credentials and personal data from API responses, or mask them before returning.",
	},
	"SENSITIVE_DATA_NONE": {
		TitleEN:   "No Sensitive Data",
		MessageEN: "No sensitive data patterns detected in response.",
	},
	"CORS_WILDCARD_WITH_CREDENTIALS": {
		TitleEN:   "CORS Wildcard with Credentials Enabled",
		MessageEN: "Access-Control-Allow-Origin is '*' while Access-Control-Allow-Credentials is true.",
		FixEN:     "Do not use wildcard origins with credentials. Return a strict allowlisted origin and set Vary: Origin.",
	},
	"CORS_WILDCARD_ORIGIN": {
		TitleEN:   "CORS Wildcard Origin Allowed",
		MessageEN: "The Access-Control-Allow-Origin header is set to '*', allowing access from any domain.",
		FixEN:     "Specify trusted domains in Access-Control-Allow-Origin instead of a wildcard.",
	},
	"CORS_ORIGIN_REFLECTION": {
		TitleEN:   "CORS Origin Reflection",
		MessageEN: "The request Origin '%s' is reflected in Access-Control-Allow-Origin.",
		FixEN:     "Return only allowlisted origins and never reflect the request Origin directly.",
	},
	"CORS_NOT_EXPOSED": {
		TitleEN:   "No CORS Exposure",
		MessageEN: "No CORS headers returned for a foreign origin.",
	},
	"CORS_RESTRICTED": {
		TitleEN:   "CORS Restricted",
		MessageEN: "CORS is restricted to specific origins.",
	},
	"SECURITY_HEADERS_PRESENT": {
		TitleEN:   "Security Headers Present",
		MessageEN: "All checked security headers are present.",
	},
	"SECURITY_HEADERS_SOME_MISSING": {
		TitleEN:   "Security Headers Missing",
		MessageEN: "Some security headers are missing.",
		FixEN:     "Add the missing headers at the application or reverse proxy layer.",
	},
	"SECURITY_HEADERS_MANY_MISSING": {
		TitleEN:   "Security Headers Missing",
		MessageEN: "Multiple important security headers are missing.",
		FixEN:     "Add the missing headers at the application or reverse proxy layer.",
	},
	"RATE_LIMIT_ENFORCED": {
		TitleEN:   "Rate Limiting Enforced",
		MessageEN: "Rate limiting detected (received 429/503).",
	},
	"RATE_LIMIT_HEADERS": {
		TitleEN:   "Rate Limit Headers Present",
		MessageEN: "Rate limiting headers present in response.",
	},
	"RATE_LIMIT_ABSENT": {
		TitleEN:   "Rate Limiting Not Detected",
		MessageEN: "No rate limiting detected. %d requests completed in %dms.",
		FixEN:     "Apply per-client rate limiting with server-side enforcement and return 429 with Retry-After when exceeded.",
	},
	"RATE_LIMIT_INCONCLUSIVE": {
		TitleEN:   "Rate Limiting Inconclusive",
		MessageEN: "Could not determine rate limiting behaviour. %d requests completed in %dms.",
		FixEN:     "Verify rate limiting manually with a larger request volume.",
	},
	"PROBE_INCOMPLETE": {
		TitleEN:   "Probe Incomplete",
		MessageEN: "%s could not be completed.",
	},
	"PROBE_EXECUTION_FAILED": {
		TitleEN:   "Probe Execution Failed",
		MessageEN: "Test execution failed",
	},
}

var uiMessages = map[string]string{
	"ConsoleFindingsTitle":    "--- Findings ---",
	"ConsoleScanSummaryTitle": "--- Scan Summary ---",
	"ConsoleDetailsLabel":     "Details",
	"ConsoleNoIssues":         "[OK] No issues found",
	"ConsoleStatusCode":       "Baseline status: %d",
	"ConsoleResponseTime":     "Scan time: %dms",
	"ConsoleSummaryLine":      "Passed: %d  Failed: %d  Warning: %d",
	"ConsoleHighestSeverity":  "Highest severity: %s",
	"ConsoleProbeStat":        "%s: %d requests, %dms",
	"JSONReportSaved":         "JSON Report saved: %s",
	"JSONReportFailed":        "Failed to save JSON report: %v",
	"Target":                  "Target: %s %s",
	"SelectedProbes":          "Probes: %s",
	"ScanningCheck":           "Running %d probes...",
	"ScanCompleteMsg":         "Scan Complete",
	"ScanCancelled":           "Scan cancelled.",
	"ScanFailed":              "Scan failed (%s): %v",
	"RateLimitWarning":        "[!] WARNING: The rate-limit probe sends a burst of concurrent requests to the target.",
	"ScanPermission":          "By using this tool, you confirm that you have permission to test the target system.",
	"ScanPrompt":              "Do you want to continue?",
	"ScanAborted":             "Scan aborted by user.",
	"ProbesTitle":             "Available probes:",
	"ServerListening":         "Listening on %s",
}

func GetMessage(id string) MessageDetail {
	if msg, ok := findingMessages[id]; ok {
		title := msg.TitleEN
		if title == "" {
			title = id
		}
		return MessageDetail{
			Title:   title,
			Message: msg.MessageEN,
			Fix:     msg.FixEN,
		}
	}
	return MessageDetail{
		Title:   "Message Not Found",
		Message: fmt.Sprintf("Message details for ID '%s' not found.", id),
		Fix:     "Please check the message ID.",
	}
}

func GetUIMessage(id string, args ...interface{}) string {
	format, ok := uiMessages[id]
	if !ok || format == "" {
		return id
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
