package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/divdash/pkg/dash/view"
)

// jsonModel is the output shape for JSONRenderer: one key per section in
// display order.
type jsonModel struct {
	order    []view.Section
	sections map[view.Section]any
}

func (m jsonModel) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, s := range m.order {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(string(s))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.sections[s])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

type JSONRenderer struct {
	w     io.Writer
	opts  RenderOptions
	model jsonModel
}

func NewJSONRenderer(w io.Writer, opts RenderOptions) *JSONRenderer {
	return &JSONRenderer{w: w, opts: opts, model: jsonModel{sections: map[view.Section]any{}}}
}

func (r *JSONRenderer) Display(section view.Section, vm any) error {
	if _, ok := r.model.sections[section]; !ok {
		r.model.order = append(r.model.order, section)
	}
	r.model.sections[section] = vm
	return nil
}

func (r *JSONRenderer) Flush() error {
	enc := json.NewEncoder(r.w)
	enc.SetEscapeHTML(false)
	if r.opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r.model); err != nil {
		return err
	}
	r.model = jsonModel{sections: map[view.Section]any{}}
	return nil
}
