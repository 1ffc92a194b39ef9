package secrets

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// Source exposes named secret values. Implementations must be safe for
// concurrent reads: independent job runs resolve their environments in
// parallel against the same source.
type Source interface {
	Get(name string) (string, bool)
}

// EnvSource reads secrets from the process environment.
type EnvSource struct{}

func (EnvSource) Get(name string) (string, bool) {
	return os.LookupEnv(name)
}

// FileSource reads secrets from a dotenv file. The file is parsed once
// on open; values are held in memory for the lifetime of the source.
type FileSource struct {
	mu     sync.RWMutex
	values map[string]string
}

// OpenFile parses the dotenv file at path. Supports "KEY=VALUE" and
// "export KEY=VALUE" lines.
func OpenFile(path string) (*FileSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}
	return &FileSource{values: values}, nil
}

func (f *FileSource) Get(name string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[name]
	return v, ok
}

// Static is an in-memory source, used in tests and for values passed
// on the command line.
type Static map[string]string

func (s Static) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Chain queries sources in order and returns the first hit.
type Chain []Source

func (c Chain) Get(name string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Get(name); ok {
			return v, true
		}
	}
	return "", false
}
