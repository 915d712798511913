// Package memory implements the persistent key-value memory: a flat string
// map stored either as plain key=value lines or as a YAML document. The two
// encodings represent the same logical map and are selected by file
// extension (.yaml/.yml for YAML, anything else for key=value lines).
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store reads and writes the persistent key-value memory file.
type Store struct {
	path string
}

// NewStore creates a Store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Read returns the full memory map. Missing or unreadable files yield an
// empty map, never an error.
func (s *Store) Read() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}

	if s.isYAML() {
		out := map[string]string{}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return map[string]string{}
		}
		return out
	}

	out := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

// Write replaces the memory file with the given map.
func (s *Store) Write(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	var encoded []byte
	if s.isYAML() {
		var err error
		encoded, err = yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal memory: %w", err)
		}
	} else {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%s\n", k, data[k])
		}
		encoded = []byte(b.String())
	}

	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("write memory %s: %w", s.path, err)
	}
	return nil
}

// Append reads the current memory, sets key to value, and writes back.
func (s *Store) Append(key, value string) error {
	data := s.Read()
	data[key] = value
	return s.Write(data)
}

// Get returns the value for key, or "".
func (s *Store) Get(key string) string {
	return s.Read()[key]
}

func (s *Store) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
