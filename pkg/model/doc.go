// Package model defines the declarative schema of a clinical form and the
// flat AnswerSet a form session fills in.
//
// A FormSchema is metadata plus ordered sections; each section holds fields.
// Field is a tagged variant discriminated by Kind; nested fields hang off
// choice options or conditional checkboxes, forming a strict tree. Field names
// share a single namespace across the tree because answers are stored flat,
// keyed by name. The schema package enforces that at load time.
package model
