package inference

import (
	"fmt"

	"github.com/pcodetools/pcode/internal/position"
)

// Severity orders diagnostics for consumers; inference never hard-fails,
// so even SeverityError diagnostics leave a usable AST behind.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return "diagnostic"
}

// Diagnostic is one type-inference finding.
type Diagnostic struct {
	Message  string
	Severity Severity
	Span     position.Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Severity, d.Span, d.Message)
}

func (v *Visitor) diagf(sev Severity, span position.Span, format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Span:     span,
	})
}
