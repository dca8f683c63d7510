// Package archivereader enumerates every regular-file entry of a
// ZIP/RAR/7z/TAR archive (and, one level deep, archives nested inside one
// of those), and streams any entry's bytes back out. Two backends exist,
// tried in order by Open: a general-purpose one covering all formats with
// nested-archive recursion, and a simpler fallback.
package archivereader

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pixelfinder/shimejifinder/internal/shimerr"
)

const (
	// ErrorOpenFailed is returned by Open when every backend refused the
	// source.
	ErrorOpenFailed shimerr.CodeError = shimerr.MinPkgArchiveReader + iota
	// ErrorEntryUnreadable marks a single entry that could not be
	// streamed during a pass; non-fatal, the pass continues.
	ErrorEntryUnreadable
	// ErrorNestedArchiveFailed marks a nested archive that could not be
	// opened; the entry is kept as an opaque leaf instead.
	ErrorNestedArchiveFailed
)

func init() {
	shimerr.Register([]shimerr.CodeError{ErrorOpenFailed, ErrorEntryUnreadable, ErrorNestedArchiveFailed}, message)
}

func message(code shimerr.CodeError) string {
	switch code {
	case ErrorOpenFailed:
		return "every archive backend refused the source"
	case ErrorEntryUnreadable:
		return "entry could not be streamed: %s: %v"
	case ErrorNestedArchiveFailed:
		return "nested archive failed to open, treating as leaf"
	default:
		return ""
	}
}

// EnumerateFunc is invoked once per regular-file entry, in archive order,
// during Reader.Enumerate.
type EnumerateFunc func(index int, path string)

// DecodeFunc is invoked once per regular-file entry, in the same archive
// order Enumerate used, during Reader.Decode. body streams that entry's
// bytes; the callback decides whether to read it.
type DecodeFunc func(index int, path string, body io.Reader) error

// Reader enumerates and streams a single archive's regular-file entries.
// A Reader must support being asked to Enumerate and Decode multiple
// times; each call reopens the underlying Source from scratch.
type Reader interface {
	// Enumerate invokes fn for every regular-file entry, path-only, in
	// archive order.
	Enumerate(fn EnumerateFunc) error
	// Decode invokes fn for every regular-file entry in the same order
	// Enumerate used, handing each a fresh reader over its bytes.
	Decode(fn DecodeFunc) error
}

// Source is a re-openable byte stream: a filename or a caller-supplied
// factory. Every decode pass calls Open again, so re-openability is a
// contract requirement.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FuncSource adapts a bare factory function to Source.
type FuncSource func() (io.ReadCloser, error)

// Open implements Source.
func (f FuncSource) Open() (io.ReadCloser, error) {
	return f()
}

// backend is satisfied by each concrete format dispatcher; Open tries each
// registered backend in order until one accepts the source.
type backend interface {
	// open returns a Reader for src, or an error if this backend cannot
	// handle the source at all (not even format detection succeeded).
	open(src Source, log logrus.FieldLogger) (Reader, error)
}

var backends = []backend{
	generalBackend{},
	fallbackBackend{},
}

// nopLogger swallows everything a Reader logs when the caller supplied no
// logger of its own.
var nopLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Open tries each backend in turn, returning the first that accepts src.
func Open(src Source) (Reader, error) {
	return OpenWithLogger(src, nil)
}

// OpenWithLogger is Open with a logger the Reader uses for per-entry skip
// decisions: Warn for an unreadable entry or a nested archive kept as an
// opaque leaf, Debug for routine recursion. A nil log discards everything.
func OpenWithLogger(src Source, log logrus.FieldLogger) (Reader, error) {
	if log == nil {
		log = nopLogger
	}
	var lastErr error
	for _, b := range backends {
		r, err := b.open(src, log)
		if err == nil {
			return r, nil
		}
		lastErr = err
	}
	return nil, ErrorOpenFailed.Error(lastErr)
}
