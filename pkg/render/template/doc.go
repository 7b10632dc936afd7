// Package template defines the renderer-agnostic template contract shared by
// the note generator and the HTML renderer. The gotemplate subpackage
// provides the pongo2-backed implementation.
package template
