package ui

import (
	"fmt"
	"io"
	"strings"
)

const AsciiArt = `
 █████╗ ██████╗ ██╗██████╗ ██████╗  ██████╗ ██████╗ ███████╗
██╔══██╗██╔══██╗██║██╔══██╗██╔══██╗██╔═══██╗██╔══██╗██╔════╝
███████║██████╔╝██║██████╔╝██████╔╝██║   ██║██████╔╝█████╗
██╔══██║██╔═══╝ ██║██╔═══╝ ██╔══██╗██║   ██║██╔══██╗██╔══╝
██║  ██║██║     ██║██║     ██║  ██║╚██████╔╝██████╔╝███████╗
╚═╝  ╚═╝╚═╝     ╚═╝╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═════╝ ╚══════╝
`

const (
	ColorReset  = "\033[0m"
	ColorGray   = "\033[90m" // Light gray
	ColorWhite  = "\033[97m" // White
	ColorRed    = "\033[91m" // Bright Red
	ColorGreen  = "\033[92m" // Bright Green
	ColorYellow = "\033[93m" // Bright Yellow
)

// PrintGradientAsciiArt prints the banner with a Yellow to Blue gradient.
// Plain text is written when w is not a terminal.
func PrintGradientAsciiArt(w io.Writer) {
	lines := strings.Split(strings.Trim(AsciiArt, "\n"), "\n")
	color := IsTerminal(w)
	for i, line := range lines {
		if !color {
			fmt.Fprintln(w, line)
			continue
		}
		ratio := float64(i) / float64(len(lines)-1)

		var r, g, b int
		// Yellow (255,255,0) -> Cyan (0,255,255) -> Blue (0,0,255)
		if ratio < 0.5 {
			localRatio := ratio * 2
			r = int(255 * (1 - localRatio))
			g = 255
			b = int(255 * localRatio)
		} else {
			localRatio := (ratio - 0.5) * 2
			r = 0
			g = int(255 * (1 - localRatio))
			b = 255
		}

		fmt.Fprintf(w, "\033[38;2;%d;%d;%dm%s\033[0m\n", r, g, b, line)
	}
}
