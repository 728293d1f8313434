package cli

import (
	"fmt"
	"io"
	"strings"
)

// PrintWarningBox prints a formatted warning box.
// The box has a consistent width and styling for permission warnings.
func PrintWarningBox(w io.Writer, title string, lines []string) {
	const boxWidth = 68 // Inner content width

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "╔%s╗\n", strings.Repeat("═", boxWidth+2))
	fmt.Fprintf(w, "║ %-*s ║\n", boxWidth, CenterText(title, boxWidth))
	fmt.Fprintf(w, "╠%s╣\n", strings.Repeat("═", boxWidth+2))

	for _, line := range lines {
		if line == "" {
			fmt.Fprintf(w, "║ %-*s ║\n", boxWidth, "")
		} else {
			fmt.Fprintf(w, "║  %-*s║\n", boxWidth-1, line)
		}
	}

	fmt.Fprintf(w, "╚%s╝\n", strings.Repeat("═", boxWidth+2))
	fmt.Fprintf(w, "\n")
}

// CenterText centers text within a given width.
func CenterText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
}

// PrivateTargetWarning is shown when a crawl is allowed to reach private addresses.
func PrivateTargetWarning(w io.Writer, rootURL string) {
	PrintWarningBox(w, "PRIVATE ADDRESSES ALLOWED", []string{
		"SSRF protection is disabled for this crawl.",
		"",
		"Target: " + rootURL,
		"Only crawl services you own or have permission to test.",
	})
}
