package fanout

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileName maps an alias or raw model id to the base name it is persisted
// under. Path separators become underscores; names containing ".." are
// rejected.
func FileName(alias string) (string, error) {
	if alias == "" || strings.Contains(alias, "..") {
		return "", fmt.Errorf("unsafe output name %q", alias)
	}
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(alias)
	return name + ".md", nil
}

// Persist writes each successful outcome to <dir>/<alias>.md and returns the
// paths written, in request order. Failures are not persisted. A write that
// fails does not stop the others; all write errors are joined.
func (r *Result) Persist(fs afero.Fs, dir string) ([]string, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var written []string
	var errs []error
	for _, alias := range r.Successes() {
		name, err := FileName(alias)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fs, path, []byte(r.Outcomes[alias].Content), 0644); err != nil {
			errs = append(errs, fmt.Errorf("failed to write %s: %w", path, err))
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}
