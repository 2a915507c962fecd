package store

import (
	"fmt"
	"strings"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// DefaultFile is used for the file backend when no path is given.
const DefaultFile = "position.json"

// Open returns a store for the provided backend spec.
// Examples:
//   - "memory"
//   - "file:/home/me/.config/divdash/position.json"
//   - "badger:/var/lib/divdash"
//
// A spec without a backend prefix is treated as a file path.
func Open(spec, key string) (Store, error) {
	if key == "" {
		key = DefaultKey
	}
	backend, arg := parseSpec(spec)
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		if arg == "" {
			arg = DefaultFile
		}
		return NewFileStore(arg, key), nil
	case BackendBadger:
		if arg == "" {
			return nil, fmt.Errorf("badger backend needs a directory, e.g. badger:/path/to/db")
		}
		return OpenBadgerStore(arg, key)
	default:
		return nil, fmt.Errorf("unsupported position backend: %s", backend)
	}
}

func parseSpec(spec string) (backend, arg string) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return BackendFile, DefaultFile
	}
	if !strings.Contains(spec, ":") {
		backend = strings.ToLower(spec)
		switch backend {
		case BackendMemory, BackendFile, BackendBadger:
			return backend, ""
		default:
			return BackendFile, spec
		}
	}
	parts := strings.SplitN(spec, ":", 2)
	backend = strings.ToLower(parts[0])
	switch backend {
	case BackendMemory, BackendFile, BackendBadger:
		return backend, parts[1]
	}
	// Windows drive letters such as C:\data\position.json.
	if len(parts[0]) == 1 {
		return BackendFile, spec
	}
	return backend, parts[1]
}
