package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/komsit37/divdash/pkg/dash/view"
)

// Renderer is the display sink for section view models.
type Renderer interface {
	Display(section view.Section, vm any) error
	// Flush writes anything buffered by Display.
	Flush() error
}

type RenderOptions struct {
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
}

// New returns the renderer for a format name: "table" (default) or "json".
func New(name string, w io.Writer, opts RenderOptions) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "table":
		return NewTableRenderer(w, opts), nil
	case "json":
		return NewJSONRenderer(w, opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table or json)", name)
	}
}
