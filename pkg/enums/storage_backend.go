package enums

import (
	"fmt"
	"strings"
)

// StorageBackend selects where the persistence gateway keeps app state.
type StorageBackend string

const (
	StorageBackendMemory   StorageBackend = "memory"
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendSQLite   StorageBackend = "sqlite"
)

var validStorageBackends = []StorageBackend{
	StorageBackendMemory,
	StorageBackendRedis,
	StorageBackendPostgres,
	StorageBackendSQLite,
}

// String implements fmt.Stringer.
func (b StorageBackend) String() string {
	return string(b)
}

// IsValid reports whether the value is a known StorageBackend.
func (b StorageBackend) IsValid() bool {
	for _, candidate := range validStorageBackends {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsSQL reports whether the backend goes through gorm and goose.
func (b StorageBackend) IsSQL() bool {
	return b == StorageBackendPostgres || b == StorageBackendSQLite
}

// ParseStorageBackend converts raw input into a StorageBackend.
func ParseStorageBackend(value string) (StorageBackend, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStorageBackends {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid storage backend %q", value)
}
