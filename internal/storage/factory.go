package storage

import "fmt"

// NewStore builds a backend by kind. Path applies to sqlite only.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store kind: %s", kind)
	}
}

func DefaultStoreKind() string {
	return "sqlite"
}

// CloseIfSupported closes backends that hold external resources.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
