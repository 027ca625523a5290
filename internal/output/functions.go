package output

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func PrintError(text string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(text))
}

// ButtonLabel is the toggle's caption for the given running state.
func ButtonLabel(running bool) string {
	if running {
		return "Abort"
	}
	return "Run"
}

// FormatPercent renders a [0,1] fraction as a percentage with 3 decimals.
func FormatPercent(progress float64) string {
	return fmt.Sprintf("%.3f%%", progress*100)
}

// FormatMbps renders a bytes/s rate as megabits per second with 3 decimals.
func FormatMbps(bytesPerSecond float64) string {
	return fmt.Sprintf("%.3f Mbps", bytesPerSecond*8/1_000_000)
}

func PrintProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}
	progress = max(0, min(progress, 1))
	filled := max(0, min(int(progress*float64(width)), width))
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(bar)
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}
