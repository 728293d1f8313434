// Package reporter renders crawl reports for the console, JSON and Markdown.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/vnykmshr/skitter/internal/domain"
	"github.com/vnykmshr/skitter/internal/util"
)

// maxSummaryFailures caps the failures listed on the console.
const maxSummaryFailures = 10

// Reporter generates crawl reports in various formats
type Reporter struct {
	report  *domain.CrawlReport
	verbose bool
}

// New creates a new report generator. Verbose keeps full error messages in
// the console summary.
func New(report *domain.CrawlReport, verbose bool) *Reporter {
	return &Reporter{report: report, verbose: verbose}
}

// ErrorRate returns server errors as a percentage of visited URLs.
func (r *Reporter) ErrorRate() float64 {
	visited := r.report.VisitedCount()
	if visited == 0 {
		return 0
	}
	return float64(r.report.ServerErrors) / float64(visited) * 100
}

// GenerateJSON creates a JSON report
func (r *Reporter) GenerateJSON(outputPath string) error {
	data, err := json.MarshalIndent(r.report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	err = os.WriteFile(outputPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}

	return nil
}

// GenerateMarkdown writes the Markdown report to outputPath.
func (r *Reporter) GenerateMarkdown(outputPath string) error {
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := r.WriteMarkdown(file); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}
	return nil
}

// WriteMarkdown renders the report as Markdown.
func (r *Reporter) WriteMarkdown(w io.Writer) error {
	md := markdown.NewMarkdown(w)

	md.H1("Skitter Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + r.report.RunID.String() + "`"},
			{"Root URL", "`" + util.RedactURL(r.report.RootURL) + "`"},
			{"Started", r.report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", strconv.FormatInt(r.report.DurationMillis, 10) + " ms"},
			{"Stop Reason", stopReasonText(r.report.StopReason)},
			{"Visited URLs", strconv.Itoa(r.report.VisitedCount())},
			{"Server Errors", strconv.Itoa(r.report.ServerErrors)},
			{"Error Rate", fmt.Sprintf("%.2f%%", r.ErrorRate())},
		},
	})
	md.PlainText("")

	switch r.report.StopReason {
	case domain.StopErrorRate:
		md.Warningf("The crawl stopped early after %d server error(s).", r.report.ServerErrors)
		md.PlainText("")
	case domain.StopCanceled:
		md.Note("The crawl was canceled before the frontier drained; results are partial.")
		md.PlainText("")
	}

	md.H2("Failures")
	md.PlainText("")
	if len(r.report.Failures) == 0 {
		md.PlainText("No server errors.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(r.report.Failures))
		for i, f := range r.report.Failures {
			rows[i] = []string{
				util.RedactURL(f.URL),
				statusText(f.StatusCode),
				orDash(util.DisplayError(f.Error, r.verbose)),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Status", "Error"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.H2("Visited URLs")
	md.PlainText("")
	visited := make([]string, len(r.report.VisitedURLs))
	for i, u := range r.report.VisitedURLs {
		visited[i] = util.RedactURL(u)
	}
	md.BulletList(visited...)
	md.PlainText("")

	return md.Build()
}

// PrintSummary prints a console summary of the report
func (r *Reporter) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "CRAWL RESULTS\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Run ID:          %s\n", r.report.RunID)
	fmt.Fprintf(w, "Root URL:        %s\n", util.RedactURL(r.report.RootURL))
	fmt.Fprintf(w, "Duration:        %d ms\n", r.report.DurationMillis)
	fmt.Fprintf(w, "Stop Reason:     %s\n", stopReasonText(r.report.StopReason))
	fmt.Fprintf(w, "Visited URLs:    %d\n", r.report.VisitedCount())
	fmt.Fprintf(w, "Server Errors:   %d\n", r.report.ServerErrors)
	fmt.Fprintf(w, "Error Rate:      %.2f%%\n", r.ErrorRate())

	if len(r.report.Failures) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 60))
		if total := len(r.report.Failures); total > maxSummaryFailures {
			fmt.Fprintf(w, "FAILURES (first %d of %d)\n", maxSummaryFailures, total)
		} else {
			fmt.Fprintf(w, "FAILURES (%d)\n", total)
		}
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 60))
		for i, f := range r.report.Failures {
			if i >= maxSummaryFailures {
				fmt.Fprintf(w, "  ... and %d more\n", len(r.report.Failures)-maxSummaryFailures)
				break
			}
			line := fmt.Sprintf("  %s: %s", util.RedactURL(f.URL), statusText(f.StatusCode))
			if f.Error != "" {
				line += " (" + util.DisplayError(f.Error, r.verbose) + ")"
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 60))
}

func stopReasonText(reason domain.StopReason) string {
	switch reason {
	case domain.StopDrained:
		return "Drained (no more URLs)"
	case domain.StopErrorRate:
		return "Server error threshold reached"
	case domain.StopCanceled:
		return "Canceled"
	default:
		return string(reason)
	}
}

func statusText(status int) string {
	if status == 0 {
		return "no response"
	}
	return "HTTP " + strconv.Itoa(status)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
