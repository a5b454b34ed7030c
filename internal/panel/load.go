package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a panel file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FileNames are the panel file names searched for, in priority order.
var FileNames = []string{"panel.json", "panel.yaml", "panel.yml"}

// ConfigError reports a panel file that exists but cannot be used.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	where := e.Path
	if where == "" {
		where = "panel config"
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", where, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FormatFor picks the encoding from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates a panel file.
func Load(path string) (*Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Reason: "cannot read file", Err: err}
	}
	p, err := LoadBytes(data, FormatFor(path))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	p.Source = path
	return p, nil
}

// LoadBytes decodes and validates a panel document. The document is a list of
// entries; each needs a non-empty alias and model.
func LoadBytes(data []byte, format Format) (*Panel, error) {
	var entries []Entry
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &entries)
	default:
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, &ConfigError{Reason: "not parseable as " + string(format), Err: err}
	}
	if len(entries) == 0 {
		return nil, &ConfigError{Reason: "no entries"}
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Alias) == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("entry %d is missing required field \"alias\"", i)}
		}
		if strings.TrimSpace(e.Model) == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("entry %d (%s) is missing required field \"model\"", i, e.Alias)}
		}
	}
	return &Panel{Entries: entries}, nil
}

// Marshal encodes the panel back to its configuration form.
func (p *Panel) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(p.Entries)
	default:
		data, err := json.MarshalIndent(p.Entries, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Save writes the panel to path, creating parent directories.
func (p *Panel) Save(path string) error {
	data, err := p.Marshal(FormatFor(path))
	if err != nil {
		return fmt.Errorf("encode panel: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Discover finds a panel file: the first of FileNames found walking up from
// dir, then global if it exists. The walk stops after the repository root
// (a directory holding .git) or the user's home directory, whichever comes
// first. Returns "" when nothing is found.
func Discover(dir, global string) string {
	home, _ := os.UserHomeDir()
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}

		if isBoundary(dir, home) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if global != "" {
		if info, err := os.Stat(global); err == nil && !info.IsDir() {
			return global
		}
	}
	return ""
}

func isBoundary(dir, home string) bool {
	if home != "" && dir == filepath.Clean(home) {
		return true
	}
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Resolve loads the panel for a process. An explicit path must exist and be
// valid. Otherwise a discovered file is loaded; with no file found the
// built-in default panel is used. Invalid files are always an error.
func Resolve(explicit, workDir, global string) (*Panel, error) {
	path := explicit
	if path == "" {
		path = Discover(workDir, global)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
