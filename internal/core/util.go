package core

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath cleans a path used as a lookup key: forward slashes, no
// "." or ".." segments where resolvable, no leading "./", NFC form.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	clean := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(path, `\`, "/")))
	clean = strings.TrimPrefix(clean, "./")
	return norm.NFC.String(clean)
}

// stem returns the file name without its final extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// hasExtension reports whether path ends in one of exts (lowercase, dotted).
func hasExtension(path string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(path))]
}

// isWithin reports whether target is dir itself or lies below it. Both must
// be absolute and cleaned.
func isWithin(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}

// keyVariants returns key plus its NFC and OS-separator forms when they
// differ from key.
func keyVariants(key string) []string {
	out := []string{key}
	if nfc := norm.NFC.String(key); nfc != key {
		out = append(out, nfc)
	}
	if native := filepath.FromSlash(key); native != key {
		out = append(out, native)
	}
	return out
}

// isFieldActive returns true if the field is requested (or if fields is empty, meaning all).
func isFieldActive(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
