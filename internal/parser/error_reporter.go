package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/models"
)

// ParserErrorReporter turns collection problems into warnings on the symbol
// table, with suggestions folded into the message
type ParserErrorReporter struct {
	builder *models.TableBuilder
}

// NewParserErrorReporter creates a reporter writing into builder
func NewParserErrorReporter(builder *models.TableBuilder) *ParserErrorReporter {
	return &ParserErrorReporter{builder: builder}
}

// Warn records a plain warning
func (r *ParserErrorReporter) Warn(subject string, loc errors.SourceLocation, message string, suggestions ...string) {
	r.builder.AddIssue(models.Issue{
		Severity: models.SeverityWarning,
		Subject:  subject,
		Message:  withSuggestions(message, suggestions),
		Location: loc,
	})
}

// ReportAnnotationError records a malformed annotation. The element it was
// attached to is left out of generation.
func (r *ParserErrorReporter) ReportAnnotationError(subject string, loc errors.SourceLocation, err error) {
	var suggestions []string
	var typed errors.AutoImplError
	if errors.As(err, &typed) {
		suggestions = typed.Suggestions()
	}
	r.Warn(subject, loc, fmt.Sprintf("ignoring %s: %s", subject, annotationMessage(err)), suggestions...)
}

// ReportUnknownContract records a -Contracts entry that names nothing usable
func (r *ParserErrorReporter) ReportUnknownContract(target, name string, loc errors.SourceLocation, available []string) {
	suggestions := []string{
		"Use Name for a contract in the same package, pkg.Name for an imported one, or the full import/path.Name",
	}
	if len(available) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Contracts in scope: %s", strings.Join(available, ", ")))
	}
	r.Warn(target, loc, fmt.Sprintf("contract %q listed on %s was not found", name, target), suggestions...)
}

// ReportNotOptedIn records a contract reference to an interface without the
// contract annotation
func (r *ParserErrorReporter) ReportNotOptedIn(target, contract string, loc errors.SourceLocation) {
	r.Warn(target, loc,
		fmt.Sprintf("%s is not an autoimpl contract; %s will not receive its members", contract, target),
		fmt.Sprintf("Add //%scontract to %s", AnnotationPrefix, contract))
}

// ReportUnsupportedType records a declaration the generator cannot handle
func (r *ParserErrorReporter) ReportUnsupportedType(subject, reason string, loc errors.SourceLocation) {
	r.Warn(subject, loc, fmt.Sprintf("%s skipped: %s", subject, reason))
}

func annotationMessage(err error) string {
	var typed errors.AutoImplError
	if errors.As(err, &typed) {
		return fmt.Sprintf("%s (%s)", messageOf(typed), typed.ErrorCode())
	}
	return err.Error()
}

// messageOf strips the location prefix the reporter already carries
func messageOf(err errors.AutoImplError) string {
	msg := err.Error()
	if loc := err.Location(); !loc.IsEmpty() {
		msg = strings.TrimPrefix(msg, loc.String()+": ")
	}
	return msg
}

func withSuggestions(message string, suggestions []string) string {
	if len(suggestions) == 0 {
		return message
	}
	return message + "; " + strings.Join(suggestions, "; ")
}

func (c *collection) reporter() *ParserErrorReporter {
	return NewParserErrorReporter(c.b)
}

func (c *collection) warn(subject string, loc errors.SourceLocation, format string, args ...interface{}) {
	c.reporter().Warn(subject, loc, fmt.Sprintf(format, args...))
}

func (c *collection) reportAnnotationError(subject string, loc errors.SourceLocation, err error) {
	c.reporter().ReportAnnotationError(subject, loc, err)
}
