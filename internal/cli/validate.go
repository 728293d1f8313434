package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MinRate is the minimum allowed rate (requests per second).
	MinRate = 0.1
	// WarnRate is the warning threshold for low rates.
	WarnRate = 1.0
)

// ErrCanceledByUser is returned when the low-rate confirmation is declined.
var ErrCanceledByUser = errors.New("crawl canceled by user")

// ValidateRateLimit checks the politeness rate before a crawl starts.
// It modifies the rate pointer if the rate is below minimum.
func ValidateRateLimit(rate *float64) error {
	return validateRateLimit(rate, os.Stderr, os.Stdin, IsInteractiveTerminal())
}

func validateRateLimit(rate *float64, out io.Writer, in io.Reader, interactive bool) error {
	// Rate of 0 means no rate limiting (unlimited)
	if *rate == 0 {
		PrintWarningBox(out, "NO RATE LIMIT", []string{
			"Requests are only bounded by --max-connections.",
			"Make sure you have permission to crawl the target site.",
		})
		return nil
	}

	// Enforce minimum rate to prevent extremely slow crawls
	if *rate > 0 && *rate < MinRate {
		fmt.Fprintf(out, "\nWARNING: Rate %.2f req/s is below minimum %.2f req/s\n", *rate, MinRate)
		fmt.Fprintf(out, "Adjusting to minimum rate of %.2f req/s\n\n", MinRate)
		*rate = MinRate
		return nil
	}

	if *rate < WarnRate {
		fmt.Fprintf(out, "\nWARNING: Low rate limit detected (%.2f req/s)\n", *rate)
		fmt.Fprintf(out, "- ~%.0f pages per minute\n", *rate*60)
		fmt.Fprintf(out, "- A large site may take a long time to crawl\n\n")

		if interactive {
			fmt.Fprintf(out, "Do you want to continue with this rate? (y/N): ")
			reader := bufio.NewReader(in)
			response, err := reader.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading confirmation: %w", err)
			}
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				return ErrCanceledByUser
			}
			fmt.Fprintf(out, "\n")
		} else {
			fmt.Fprintf(out, "Continuing in non-interactive mode...\n\n")
		}
	}

	return nil
}

// IsInteractiveTerminal checks if the program is running in an interactive terminal.
func IsInteractiveTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// Character device means a terminal rather than a pipe or file
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
