package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-clinicform/pkg/model"
)

// DefaultRequestTimeout bounds URL fetches when no timeout is configured.
const DefaultRequestTimeout = 10 * time.Second

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem sets the fs.FS that SourceFromFS locations resolve against.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources using client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			clone := *client
			l.http = &clone
		}
	}
}

// WithRequestTimeout bounds URL fetches.
func WithRequestTimeout(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = timeout
	}
}

// WithLogger sets the logger used to report quarantined fields.
func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithDecorators registers decorators applied after decoding, before the
// semantic checks.
func WithDecorators(decorators ...model.Decorator) LoaderOption {
	return func(l *Loader) {
		l.decorators = append(l.decorators, decorators...)
	}
}

// WithoutStructureCheck skips the meta-schema validation.
func WithoutStructureCheck() LoaderOption {
	return func(l *Loader) {
		l.skipStructure = true
	}
}

// Loader reads schema documents from files, an fs.FS, or URLs and decodes
// them into the closed model.
type Loader struct {
	fs            fs.FS
	http          *http.Client
	timeout       time.Duration
	logger        zerolog.Logger
	decorators    []model.Decorator
	skipStructure bool
}

// NewLoader constructs a Loader. URL sources are rejected unless an HTTP
// client is configured.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{
		timeout: DefaultRequestTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load fetches the document behind src and decodes it. The returned error
// covers I/O and syntax failures; semantic findings are reported as
// Result.Issues.
func (l *Loader) Load(ctx context.Context, src Source) (Result, error) {
	if src == nil {
		return Result{}, errors.New("schema: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case SourceKindURL:
		if l.http == nil {
			return Result{}, errors.New("schema: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("schema: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Result{}, fmt.Errorf("schema: load %s: %w", src.Location(), err)
	}

	doc, err := NewDocument(src, data)
	if err != nil {
		return Result{}, err
	}
	return l.Decode(doc)
}

// Decode parses a document already in memory.
func (l *Loader) Decode(doc Document) (Result, error) {
	tree, err := decodeTree(doc.raw)
	if err != nil {
		return Result{}, fmt.Errorf("schema: %s: %w", doc.Location(), err)
	}
	jsonDoc, err := json.Marshal(tree)
	if err != nil {
		return Result{}, fmt.Errorf("schema: %s: re-encode: %w", doc.Location(), err)
	}

	var result Result
	if !l.skipStructure {
		result.Issues = append(result.Issues, checkStructure(jsonDoc)...)
	}

	var raw rawDocument
	if err := json.Unmarshal(jsonDoc, &raw); err != nil {
		return result, fmt.Errorf("schema: %s: decode: %w", doc.Location(), err)
	}
	result.Schema = convert(raw)

	for _, decorator := range l.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&result.Schema); err != nil {
			return result, fmt.Errorf("schema: %s: decorate: %w", doc.Location(), err)
		}
	}

	result.Issues = append(result.Issues, Check(result.Schema)...)
	for _, issue := range result.Issues {
		if issue.Severity == SeverityWarning {
			l.logger.Warn().Str("source", doc.Location()).Str("path", issue.Path).Str("field", issue.Field).Msg(issue.Message)
		}
	}
	return result, nil
}

// Parse decodes data with a default Loader. name labels errors.
func Parse(data []byte, name string) (Result, error) {
	doc, err := NewDocument(SourceFromFS(name), data)
	if err != nil {
		return Result{}, err
	}
	return NewLoader().Decode(doc)
}

// MustParse is Parse for static fixtures; it panics on syntax errors and
// error-severity issues.
func MustParse(data []byte, name string) model.FormSchema {
	result, err := Parse(data, name)
	if err != nil {
		panic(err)
	}
	if err := result.Err(); err != nil {
		panic(err)
	}
	return result.Schema
}
