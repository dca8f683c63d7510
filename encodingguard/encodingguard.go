// Package encodingguard validates and repairs archive entry names and XML
// document bytes. Japanese-authored archives commonly use Shift-JIS for
// both; repair is delegated to golang.org/x/text/encoding/japanese.
package encodingguard

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

// quirkRewrites maps a handful of Shift-JIS byte sequences for two Japanese
// filenames that some archivers mangle beyond clean re-encoding, to their
// canonical English equivalents. See Guard.RepairName.
var quirkRewrites = map[string]string{
	"\x8d\x73\x93\xae.xml": "behaviors.xml", // 行動.xml misencoded verbatim
	"\x93\xae\x8d\xec.xml": "actions.xml",   // 動作.xml misencoded verbatim
}

// Guard validates and repairs entry name encodings. It holds no mutable
// state; the zero value is ready to use. The orchestrator builds one for
// repairing entry names, and actionsxml.Parse builds its own for document
// bytes.
type Guard struct{}

// New returns a ready-to-use Guard.
func New() Guard {
	return Guard{}
}

// IsValidUTF8 reports whether s is well-formed UTF-8.
func (Guard) IsValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// ShiftJISToUTF8 attempts to decode s as Shift-JIS and re-encode it as UTF-8.
// It reports false if the bytes do not decode cleanly. The decoder replaces
// undecodable bytes with U+FFFD instead of failing, so any replacement
// character in the output counts as a failed decode.
func (Guard) ShiftJISToUTF8(s string) (string, bool) {
	out, err := japanese.ShiftJIS.NewDecoder().String(s)
	if err != nil || !utf8.ValidString(out) || strings.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return out, true
}

// RepairName repairs an archive entry's path for use downstream. Each path
// component is first checked against the legacy quirk table (two specific
// Japanese filenames rewritten to their English forms when their Shift-JIS
// byte sequence appears verbatim); every other component is accepted as-is
// if already valid UTF-8, then attempted as Shift-JIS. It reports false if
// none of that produces valid UTF-8, in which case the caller must drop the
// entry (EncodingUnrepairable).
func (g Guard) RepairName(path string) (string, bool) {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if fixed, ok := quirkRewrites[part]; ok {
			parts[i] = fixed
			continue
		}
		if g.IsValidUTF8(part) {
			continue
		}
		fixed, ok := g.ShiftJISToUTF8(part)
		if !ok {
			return "", false
		}
		parts[i] = fixed
	}
	return strings.Join(parts, "/"), true
}

// RepairXML repairs a whole XML document's bytes: a document that is not
// valid UTF-8, carries no encoding declaration of its own, and decodes
// cleanly as Shift-JIS (common for Japanese-authored actions XMLs saved
// without a declaration) is converted. Anything else is returned unchanged —
// a document that names its charset belongs to the parser's CharsetReader,
// and converting it here too would decode it twice.
func (g Guard) RepairXML(data []byte) []byte {
	if g.IsValidUTF8(string(data)) || declaresEncoding(data) {
		return data
	}
	if fixed, ok := g.ShiftJISToUTF8(string(data)); ok {
		return []byte(fixed)
	}
	return data
}

// declaresEncoding reports whether the document's XML declaration names an
// encoding. The declaration, when present, sits in the first line; 256
// bytes is more than enough to cover it.
func declaresEncoding(data []byte) bool {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	s := strings.ToLower(string(head))
	decl := strings.Index(s, "<?xml")
	if decl < 0 {
		return false
	}
	end := strings.Index(s[decl:], "?>")
	if end < 0 {
		end = len(s) - decl
	}
	return strings.Contains(s[decl:decl+end], "encoding=")
}

// CharsetReader decodes the non-UTF-8 charsets an XML declaration may name,
// in the shape encoding/xml and etree expect. Only the Shift-JIS family is
// supported; that is the only legacy encoding the shimeji corpus uses.
func CharsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "shift_jis", "shift-jis", "sjis", "windows-31j", "cp932", "ms932":
		return japanese.ShiftJIS.NewDecoder().Reader(input), nil
	}
	return nil, fmt.Errorf("encodingguard: unsupported charset %q", charset)
}
