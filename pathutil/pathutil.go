// Package pathutil provides the small set of ASCII, locale-independent path
// helpers Discovery and FolderTree build on: lower-casing, extension and
// last-component extraction, and flattening a nested path into a single
// output filename.
package pathutil

import "strings"

// ToLower lower-cases ASCII letters only, independent of the host locale.
// Archive entry names are compared this way throughout the pipeline so a
// Turkish-locale "I" never turns into "ı".
func ToLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Extension returns the substring after the last '.' in the last path
// component, or "" if there is none.
func Extension(p string) string {
	name := LastComponent(p)
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}
	return ""
}

// LastComponent returns the substring after the last '/', or the whole
// string if there is no '/'.
func LastComponent(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// NormalizeFilename flattens a (possibly nested) path referenced from an
// actions XML into a single, lower-cased output filename: leading slashes
// are stripped and remaining slashes become underscores, so
// "/sub/shime1.png" and "sub/shime1.png" both normalize to "sub_shime1.png".
func NormalizeFilename(p string) string {
	p = strings.TrimLeft(p, "/")
	p = strings.ReplaceAll(p, "/", "_")
	return ToLower(p)
}
