package provider

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MissingResourceError reports a referenced input file that does not exist.
type MissingResourceError struct {
	Path string
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("image not found: %s", e.Path)
}

var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ImageMIME infers the MIME type from the file extension, defaulting to
// image/png for anything unrecognised.
func ImageMIME(path string) string {
	if m, ok := imageMIME[strings.ToLower(filepath.Ext(path))]; ok {
		return m
	}
	return "image/png"
}

// EncodeImage reads path and returns it as a base64 data URL.
func EncodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &MissingResourceError{Path: path}
		}
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return "data:" + ImageMIME(path) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// checkImages fails on the first image path that does not exist, before any
// file is read or request built.
func checkImages(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return &MissingResourceError{Path: p}
			}
			return fmt.Errorf("stat image %s: %w", p, err)
		}
	}
	return nil
}
