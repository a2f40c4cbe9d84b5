package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"eventgate/internal/common/fsutil"
	"eventgate/pkg/types"
)

// descriptorFile is the on-disk shape of an event type descriptor file.
type descriptorFile struct {
	EventTypes []types.EventType `json:"event_types" yaml:"event_types" toml:"event_types"`
}

// LoadFile reads event type descriptors from a .yaml/.yml/.json/.toml file.
func LoadFile(path string) ([]types.EventType, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read event types: %w", err)
	}
	var f descriptorFile
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	case ".toml":
		err = toml.Unmarshal(b, &f)
	default:
		return nil, fmt.Errorf("unsupported event types extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(p), err)
	}
	return f.EventTypes, nil
}

// LoadDir reads every descriptor file in dir in lexical order. Files with
// other extensions are ignored.
func LoadDir(dir string) ([]types.EventType, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json", ".toml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	var out []types.EventType
	for _, n := range names {
		descs, err := LoadFile(filepath.Join(abs, n))
		if err != nil {
			return nil, err
		}
		out = append(out, descs...)
	}
	return out, nil
}

// Load builds a registry from the built-in defaults plus the descriptors at
// path, which may be a file or a directory. An empty path yields the defaults.
func Load(path string) (*Registry, error) {
	descs := Defaults()
	if path != "" {
		p, err := fsutil.ExpandHome(path)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("event types path: %w", err)
		}
		var extra []types.EventType
		if st.IsDir() {
			extra, err = LoadDir(p)
		} else {
			extra, err = LoadFile(p)
		}
		if err != nil {
			return nil, err
		}
		descs = append(descs, extra...)
	}
	return New(descs...)
}
