package archivereader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
	"github.com/sirupsen/logrus"

	"github.com/pixelfinder/shimejifinder/pathutil"
)

// rawEntry is one regular-file entry discovered during a parse, together
// with a factory that re-derives its bytes. For entries recovered from a
// nested archive, open replays the nested parse against the already
// in-memory spool rather than touching the outer Source again.
type rawEntry struct {
	path string
	open func() (io.Reader, error)
}

// generalBackend is the primary backend: ZIP, TAR, TAR.GZ, RAR and 7z,
// with one level of recursion into a nested archive entry.
type generalBackend struct{}

func (generalBackend) open(src Source, log logrus.FieldLogger) (Reader, error) {
	// A throwaway parse validates the source is a format this backend
	// understands before committing to it; Enumerate/Decode each redo
	// this parse against a fresh Source.Open so every pass genuinely
	// re-opens the stream.
	if _, err := parseArchive(src, true, log); err != nil {
		return nil, err
	}
	return &reopeningReader{
		src:   src,
		log:   log,
		parse: func(s Source) ([]rawEntry, error) { return parseArchive(s, true, log) },
	}, nil
}

// reopeningReader re-derives its entry list from scratch on every
// Enumerate/Decode call by re-invoking parse against src. Because parse is
// deterministic, two calls produce identical (index, path) tuples without
// needing to cache anything between passes.
type reopeningReader struct {
	src   Source
	log   logrus.FieldLogger
	parse func(Source) ([]rawEntry, error)
}

func (r *reopeningReader) Enumerate(fn EnumerateFunc) error {
	entries, err := r.parse(r.src)
	if err != nil {
		return err
	}
	for i, e := range entries {
		fn(i, e.path)
	}
	return nil
}

func (r *reopeningReader) Decode(fn DecodeFunc) error {
	entries, err := r.parse(r.src)
	if err != nil {
		return err
	}
	for i, e := range entries {
		body, err := e.open()
		if err != nil {
			// Non-fatal: the entry is skipped and the pass continues.
			r.log.WithField("entry", e.path).WithError(ErrorEntryUnreadable.Errorf(e.path, err)).Warn("skipping unreadable entry")
			continue
		}
		if err := fn(i, e.path, body); err != nil {
			return err
		}
	}
	return nil
}

// parseArchive sniffs src's format and dispatches to the matching listing
// function. allowRecursion gates nested-archive expansion: the nested
// parse it performs always passes allowRecursion=false, so recursion is
// exactly one level deep regardless of how many archives are nested inside
// each other.
func parseArchive(src Source, allowRecursion bool, log logrus.FieldLogger) ([]rawEntry, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, br, err := sniff(rc, "")
	if err != nil {
		return nil, err
	}

	var raw []rawEntry
	switch f {
	case formatZip:
		data, ok, err := spool(br, 1<<40)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("zip archive too large to spool")
		}
		raw, err = parseZip(data)
		if err != nil {
			return nil, err
		}
	case format7z:
		data, ok, err := spool(br, 1<<40)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("7z archive too large to spool")
		}
		raw, err = parse7z(data)
		if err != nil {
			return nil, err
		}
	case formatRar:
		raw, err = parseRar(br)
		if err != nil {
			return nil, err
		}
	case formatTarGz:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		raw, err = parseTar(gz)
		if err != nil {
			return nil, err
		}
	case formatTar:
		raw, err = parseTar(br)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unrecognized archive format")
	}

	if !allowRecursion {
		return raw, nil
	}
	return expandNested(raw, log), nil
}

// expandNested replaces each entry whose name looks like a nested archive
// with that archive's own flattened entries, stem-prefixed. src.zip is
// skipped by convention: it carries the unmodified source mascots. A
// nested archive that fails to open or exceeds the memory cap is kept as
// an opaque leaf; the pass continues.
func expandNested(raw []rawEntry, log logrus.FieldLogger) []rawEntry {
	out := make([]rawEntry, 0, len(raw))
	for _, e := range raw {
		lower := pathutil.ToLower(pathutil.LastComponent(e.path))
		_, looksNested := nestedFormatByName(lower)
		if !looksNested || lower == "src.zip" {
			out = append(out, e)
			continue
		}

		body, err := e.open()
		if err != nil {
			log.WithField("entry", e.path).WithError(ErrorNestedArchiveFailed.Error(err)).Warn("keeping nested archive as opaque leaf")
			out = append(out, e)
			continue
		}
		data, ok, err := spool(body, maxNestedArchiveBytes)
		if err != nil || !ok {
			log.WithField("entry", e.path).WithError(ErrorNestedArchiveFailed.Error(err)).Warn("keeping nested archive as opaque leaf")
			out = append(out, e)
			continue
		}

		nested, err := parseArchive(FuncSource(func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}), false, log)
		if err != nil {
			log.WithField("entry", e.path).WithError(ErrorNestedArchiveFailed.Error(err)).Warn("keeping nested archive as opaque leaf")
			out = append(out, e)
			continue
		}

		log.WithField("entry", e.path).WithField("entries", len(nested)).Debug("expanded nested archive")
		stem := stripExtension(e.path)
		for _, n := range nested {
			n := n
			out = append(out, rawEntry{
				path: stem + "/" + n.path,
				open: n.open,
			})
		}
	}
	return out
}

func stripExtension(path string) string {
	ext := pathutil.Extension(path)
	if ext == "" {
		return path
	}
	return path[:len(path)-len(ext)-1]
}

func parseZip(data []byte) ([]rawEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var out []rawEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		f := f
		out = append(out, rawEntry{
			path: f.Name,
			open: func() (io.Reader, error) { return f.Open() },
		})
	}
	return out, nil
}

func parse7z(data []byte) ([]rawEntry, error) {
	zr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var out []rawEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		f := f
		out = append(out, rawEntry{
			path: f.Name,
			open: func() (io.Reader, error) { return f.Open() },
		})
	}
	return out, nil
}

func parseRar(r io.Reader) ([]rawEntry, error) {
	rr, err := rardecode.NewReader(r)
	if err != nil {
		return nil, err
	}
	var out []rawEntry
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.IsDir {
			continue
		}
		data, _, err := spool(rr, 1<<40)
		if err != nil {
			return nil, err
		}
		out = append(out, rawEntry{
			path: hdr.Name,
			open: func() (io.Reader, error) { return bytes.NewReader(data), nil },
		})
	}
	return out, nil
}

func parseTar(r io.Reader) ([]rawEntry, error) {
	tr := tar.NewReader(r)
	var out []rawEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, _, err := spool(tr, 1<<40)
		if err != nil {
			return nil, err
		}
		out = append(out, rawEntry{
			path: hdr.Name,
			open: func() (io.Reader, error) { return bytes.NewReader(data), nil },
		})
	}
	return out, nil
}
