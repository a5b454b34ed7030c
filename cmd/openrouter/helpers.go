package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/term"
)

// errNoPrompt means neither an argument, --file nor piped stdin gave a prompt.
var errNoPrompt = errors.New("no prompt given")

// exitOnError prints the error to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// readPrompt picks the prompt from the argument, then the --file path, then
// stdin when it is not a terminal.
func readPrompt(args []string, file string, stdin io.Reader, stdinTTY bool) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s not found", file)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		if p := strings.TrimSpace(string(data)); p != "" {
			return p, nil
		}
		return "", errNoPrompt
	}
	if stdin != nil && !stdinTTY {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if p := strings.TrimSpace(string(data)); p != "" {
			return p, nil
		}
	}
	return "", errNoPrompt
}

// expandImages expands glob patterns (including **) into file paths. A
// pattern without glob metacharacters is kept as-is so a missing file is
// reported by the completion client.
func expandImages(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad image pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("image not found: %s", pattern)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

// splitList flattens comma-separated flag values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
