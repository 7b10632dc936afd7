package schema

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-clinicform/pkg/model"
)

var (
	// ErrNameCollision marks two fields sharing a name anywhere in the tree.
	ErrNameCollision = errors.New("schema: duplicate field name")
	// ErrEmptySchema marks a document without any section.
	ErrEmptySchema = errors.New("schema: no sections")
	// ErrEmptyName marks a field without a name.
	ErrEmptyName = errors.New("schema: field name is required")
	// ErrStructure marks a document that does not match the schema shape.
	ErrStructure = errors.New("schema: invalid document structure")
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of the load-time checks.
type Issue struct {
	Path     string   `json:"path"`
	Field    string   `json:"field,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	cause error
}

func (i Issue) Error() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Unwrap exposes the sentinel behind the issue, if any.
func (i Issue) Unwrap() error {
	return i.cause
}

// Result is a decoded schema with the findings collected while loading it.
type Result struct {
	Schema model.FormSchema `json:"schema"`
	Issues []Issue          `json:"issues,omitempty"`
}

// Err joins the error-severity issues, or returns nil when there are none.
// Warnings never make a schema unusable.
func (r Result) Err() error {
	var errs []error
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the warning-severity issues.
func (r Result) Warnings() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

func errorIssue(path, field string, cause error, format string, args ...any) Issue {
	return Issue{Path: path, Field: field, Severity: SeverityError, Message: fmt.Sprintf(format, args...), cause: cause}
}

func warningIssue(path, field, format string, args ...any) Issue {
	return Issue{Path: path, Field: field, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}
