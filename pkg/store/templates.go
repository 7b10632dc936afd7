package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// DefaultTemplateExt is the extension of note templates on disk.
const DefaultTemplateExt = ".tpl"

// FSTemplates serves templates named <slug><Ext> from an fs.FS.
type FSTemplates struct {
	FS  fs.FS
	Ext string
}

var _ TemplateSource = FSTemplates{}

func (t FSTemplates) Template(ctx context.Context, slug string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := t.Ext
	if ext == "" {
		ext = DefaultTemplateExt
	}
	name := strings.TrimSpace(slug) + ext
	if slug == "" || !fs.ValidPath(name) || strings.Contains(slug, "/") {
		return "", fmt.Errorf("%w: template %q", ErrNotFound, slug)
	}
	data, err := fs.ReadFile(t.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: template %q", ErrNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("store: read template %q: %w", slug, err)
	}
	return string(data), nil
}

// TemplateChain asks each source in turn. A source answering ErrNotFound
// passes to the next one; any other error stops the chain.
type TemplateChain []TemplateSource

var _ TemplateSource = TemplateChain(nil)

func (c TemplateChain) Template(ctx context.Context, slug string) (string, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		tpl, err := src.Template(ctx, slug)
		if err == nil {
			return tpl, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: template %q", ErrNotFound, slug)
}
