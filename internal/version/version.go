package version

const Value = "0.3.0"

func ScannerUserAgent() string {
	return "apiprobe/" + Value + " (defensive API security scanner)"
}
