// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"bytes"
	"io"
	"testing"

	"github.com/goliatone/go-clinicform/pkg/model"
	"github.com/goliatone/go-clinicform/pkg/schema"
)

// MustParseSchema decodes an inline schema document.
func MustParseSchema(t *testing.T, doc string) model.FormSchema {
	t.Helper()

	result, err := schema.Parse([]byte(doc), t.Name())
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("schema issues: %v", err)
	}
	return result.Schema
}

// CaptureTemplateOutput runs a render function that also writes to an
// io.Writer and returns both the result and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
