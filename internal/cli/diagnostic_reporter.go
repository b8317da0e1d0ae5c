package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: os.Stderr}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(out io.Writer) *DiagnosticReporter {
	r.out = out
	return r
}

// ReportWarning prints a one-line warning
func (r *DiagnosticReporter) ReportWarning(message string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportIssue prints a collection issue. Informational issues only show up
// in verbose mode.
func (r *DiagnosticReporter) ReportIssue(issue models.Issue) {
	if issue.Severity < models.SeverityWarning && !r.verbose {
		return
	}
	message := issue.Message
	if !issue.Location.IsEmpty() {
		message = fmt.Sprintf("%s: %s", issue.Location.String(), message)
	}
	r.ReportWarning(message)
}

// ReportSkip prints a member that was left out of a target
func (r *DiagnosticReporter) ReportSkip(target string, rec models.SkipRecord) {
	// methods are expected to be written by hand
	if rec.Kind == models.SkipMethod && !r.verbose {
		return
	}
	subject := shortName(rec.Contract)
	if rec.Member != "" {
		subject += "." + rec.Member
	}
	message := fmt.Sprintf("%s: %s %s skipped: %s", target, rec.Kind, subject, rec.Reason)
	if rec.Kind == models.SkipConflict && len(rec.Types) > 1 {
		message = fmt.Sprintf("%s (kept %s from %s, dropped %s)", message, rec.Types[0], shortName(rec.Shadowed), strings.Join(rec.Types[1:], ", "))
	}
	r.ReportWarning(message)
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if errors.As(err, &multi) && !multi.IsEmpty() {
		if multi.Count() == 1 {
			err = multi.Errors[0]
		} else {
			title := fmt.Sprintf("ERROR: %d targets failed", multi.Count())
			fmt.Fprintf(r.out, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
			for _, each := range multi.Errors {
				fmt.Fprintf(r.out, "\n")
				r.reportOne(each)
			}
			fmt.Fprintf(r.out, "\n")
			return
		}
	}

	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")
	r.reportOne(err)
	fmt.Fprintf(r.out, "\n")
}

// reportOne prints a single error with its code, location, context and hints
func (r *DiagnosticReporter) reportOne(err error) {
	var typed errors.AutoImplError
	if !errors.As(err, &typed) {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
		r.printHints(errors.GetAllHints(err))
		return
	}

	r.printErrorHeader(typed.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n\n", typed.Error())

	if loc := typed.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := typed.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	hints := typed.Suggestions()
	if len(hints) == 0 {
		hints = errors.GetAllHints(err)
	}
	r.printHints(hints)
	r.printAdditionalHelp(typed.ErrorCode())

	if cause := typed.Unwrap(); r.verbose && cause != nil {
		fmt.Fprintf(r.out, "Underlying cause:\n%+v\n", cause)
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	title := code.String()
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information, important keys first
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"target", "member", "contracts", "types", "language"}
	printed := make(map[string]bool)
	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	var rest []string
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func (r *DiagnosticReporter) formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printHints(hints []string) {
	if len(hints) == 0 {
		return
	}
	fmt.Fprintf(r.out, "Suggestions:\n")
	for _, hint := range hints {
		fmt.Fprintf(r.out, "   - %s\n", hint)
	}
	fmt.Fprintf(r.out, "\n")
}

// printAdditionalHelp adds general guidance for a few error codes
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.ConflictErrorCode:
		fmt.Fprintf(r.out, "Two contracts declare the same member with different types.\n")
		fmt.Fprintf(r.out, "Mark one of them //autoimpl::exempt or implement the member on the target.\n\n")
	case errors.CollisionErrorCode:
		fmt.Fprintf(r.out, "Generated file and extension names come from the type name with its first letter capitalized.\n\n")
	case errors.SyntaxErrorCode:
		fmt.Fprintf(r.out, "Annotations look like //autoimpl::contract -Strict=false, with no space after //.\n\n")
	case errors.LoadErrorCode:
		fmt.Fprintf(r.out, "Check that the patterns resolve from --dir and that go list works there.\n\n")
	case errors.UnsupportedLanguageErrorCode:
		fmt.Fprintf(r.out, "Remove the language setting to generate Go.\n\n")
	}
}

// shortName drops the package path from a qualified name
func shortName(qualified string) string {
	if i := strings.LastIndex(qualified, "/"); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
