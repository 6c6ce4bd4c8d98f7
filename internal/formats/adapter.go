package formats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnsupported = errors.New("unsupported source format")
	ErrUnreadable  = errors.New("unreadable source")
)

// Adapter flattens a source container (document, sheet, plain text) into
// newline-delimited text: one paragraph, cell or row block per line.
type Adapter interface {
	Flatten(ctx context.Context, r io.Reader) (string, error)
}

// AdapterFunc lets a plain function serve as an Adapter.
type AdapterFunc func(ctx context.Context, r io.Reader) (string, error)

func (f AdapterFunc) Flatten(ctx context.Context, r io.Reader) (string, error) { return f(ctx, r) }

// Registry of adapters by file extension (".docx", ".xlsx", ...)
var (
	mu       sync.RWMutex
	registry = map[string]Adapter{}
)

// Register an adapter for one or more extensions. Call from init() in subpackages.
func Register(a Adapter, exts ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, ext := range exts {
		registry[normExt(ext)] = a
	}
}

// Lookup returns the adapter registered for an extension.
func Lookup(ext string) (Adapter, bool) {
	mu.RLock()
	defer mu.RUnlock()
	a, ok := registry[normExt(ext)]
	return a, ok
}

// Extensions lists the registered extensions, sorted.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Flatten picks the adapter by the extension of name.
func Flatten(ctx context.Context, name string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	a, ok := Lookup(ext)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	text, err := a.Flatten(ctx, r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w %s: %w", ErrUnreadable, filepath.Base(name), err)
	}
	return text, nil
}

func normExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
