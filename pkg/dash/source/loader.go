package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// Loader reads documents from local files or http(s) URLs. JSON is the
// default encoding; .yaml/.yml locations are parsed as YAML.
type Loader struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewLoader(timeout time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Client: &http.Client{Timeout: timeout}, Logger: logger}
}

func (l *Loader) LoadMarket(ctx context.Context, spec string) (*types.MarketData, error) {
	root, err := l.load(ctx, spec)
	if err != nil {
		return nil, err
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an object at top level", spec)
	}
	return NormalizeMarket(m), nil
}

func (l *Loader) LoadEvents(ctx context.Context, spec string) ([]types.MarketEvent, error) {
	root, err := l.load(ctx, spec)
	if err != nil {
		return nil, err
	}
	return NormalizeEvents(root), nil
}

func (l *Loader) load(ctx context.Context, spec string) (any, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty location")
	}
	data, err := l.fetch(ctx, spec)
	if err != nil {
		return nil, err
	}
	root, err := decode(data, isYAML(spec))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", spec, err)
	}
	l.Logger.Debug("document loaded", zap.String("location", spec), zap.Int("bytes", len(data)))
	return root, nil
}

func (l *Loader) fetch(ctx context.Context, spec string) ([]byte, error) {
	if !isURL(spec) {
		data, err := os.ReadFile(spec)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", spec, err)
		}
		return data, nil
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", spec, err)
	}
	req.Header.Set("Cache-Control", "no-store")
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", spec, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %s", spec, res.Status)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", spec, err)
	}
	return data, nil
}

func decode(data []byte, asYAML bool) (any, error) {
	var root any
	if asYAML {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		return norm(root), nil
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return root, nil
}

// norm converts YAML maps with non-string keys to map[string]any.
func norm(v any) any {
	switch m := v.(type) {
	case map[any]any:
		mm := make(map[string]any, len(m))
		for k, val := range m {
			mm[fmt.Sprint(k)] = norm(val)
		}
		return mm
	case map[string]any:
		for k, val := range m {
			m[k] = norm(val)
		}
		return m
	case []any:
		out := make([]any, 0, len(m))
		for _, e := range m {
			out = append(out, norm(e))
		}
		return out
	default:
		return v
	}
}

func isURL(spec string) bool {
	u, err := url.Parse(spec)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func isYAML(spec string) bool {
	p := spec
	if u, err := url.Parse(spec); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}
