// Package upload checks candidate document files before they reach storage.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = errors.New("file exceeds the maximum size")
	ErrExtension   = errors.New("file extension not allowed")
	ErrSpoofed     = errors.New("file content does not match extension")
	ErrContentType = errors.New("content type not allowed")
)

// Result describes an accepted file.
type Result struct {
	Extension   string
	ContentType string
}

// Magic byte signatures for allowed file types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

// contentTypes is the MIME each extension must sniff as
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

// Validate performs extension, magic byte and sniffed MIME checks.
func Validate(filename string, data []byte, maxBytes int64) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmpty
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Result{}, fmt.Errorf("%w (%d MB)", ErrTooLarge, maxBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	expected, ok := contentTypes[ext]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrExtension, ext)
	}

	if !hasMagic(ext, data) {
		return Result{}, ErrSpoofed
	}

	detected := http.DetectContentType(data)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	if detected != expected {
		return Result{}, fmt.Errorf("%w: %s", ErrContentType, detected)
	}

	return Result{Extension: ext, ContentType: expected}, nil
}

func hasMagic(ext string, data []byte) bool {
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedExtensions returns the accepted extensions for error messages
func AllowedExtensions() []string {
	out := make([]string, 0, len(contentTypes))
	for ext := range contentTypes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// SafeFileName strips any path component and control characters from a client supplied name.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		return "archivo"
	}
	if len(name) > 200 {
		name = name[len(name)-200:]
	}
	return name
}
