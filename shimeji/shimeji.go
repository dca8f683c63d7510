// Package shimeji is the public API surface: it ties the archive reader,
// entry table, folder tree, discovery, extractor sinks and default XMLs
// together into analyze/extract operations.
package shimeji

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pixelfinder/shimejifinder/archivereader"
	"github.com/pixelfinder/shimejifinder/defaultxml"
	"github.com/pixelfinder/shimejifinder/discovery"
	"github.com/pixelfinder/shimejifinder/encodingguard"
	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/extract"
	"github.com/pixelfinder/shimejifinder/foldertree"
)

const defaultFallbackName = "archive"

// AnalyzeConfig tunes Archive.Extract's default sink.
type AnalyzeConfig struct {
	// OnlyThumbnails, when true, makes Archive.Extract(dir) use a
	// ThumbnailSink instead of a FilesystemSink.
	OnlyThumbnails bool

	// Logger receives Debug lines for routine skip decisions and Warn
	// lines for unreadable entries and nested-archive fallbacks. Nil
	// discards all of it.
	Logger logrus.FieldLogger
}

// Archive is the handle Analyze returns: the EntryTable, the discovered
// mascot set, and enough state to run the final extraction pass.
type Archive struct {
	reader archivereader.Reader
	table  *entry.Table
	reg    *discovery.Registry
	cfg    AnalyzeConfig
}

// Analyze opens src, discovers every mascot it contains, and returns a
// handle ready for Shimejis/Extract. A Source carries no filename, so the
// fixed name "archive" is used as the mascot-name fallback; use AnalyzeFile
// to derive it from a file's name, or AnalyzeWithName to supply one.
func Analyze(src archivereader.Source, cfg ...AnalyzeConfig) (*Archive, error) {
	return AnalyzeWithName(defaultFallbackName, src, cfg...)
}

// AnalyzeFile is Analyze for an archive on disk: the file is re-opened
// fresh on each decode pass, and its name without the extension becomes
// the mascot-name fallback.
func AnalyzeFile(path string, cfg ...AnalyzeConfig) (*Archive, error) {
	base := filepath.Base(path)
	fallback := strings.TrimSuffix(base, filepath.Ext(base))
	src := archivereader.FuncSource(func() (io.ReadCloser, error) {
		return os.Open(path)
	})
	return AnalyzeWithName(fallback, src, cfg...)
}

// AnalyzeWithName is Analyze with an explicit mascot-name fallback, used
// when the blacklist-climb rule reaches the folder tree's root.
func AnalyzeWithName(fallbackName string, src archivereader.Source, cfg ...AnalyzeConfig) (*Archive, error) {
	var c AnalyzeConfig
	if len(cfg) > 0 {
		c = cfg[0]
	}

	reader, err := archivereader.OpenWithLogger(src, c.Logger)
	if err != nil {
		return nil, err
	}

	table, err := fillTable(reader)
	if err != nil {
		return nil, err
	}

	tree := foldertree.Build(table, "")
	pairs, shimeRoots := discovery.PhaseA(tree)

	xmlBytes, err := preExtractActionsXML(reader, table, pairs)
	if err != nil {
		return nil, err
	}

	reg := discovery.NewRegistry()
	reg.Log = c.Logger
	discovery.PhaseB(reg, pairs, xmlBytes, fallbackName)
	discovery.PhaseC(reg, shimeRoots, fallbackName)

	return &Archive{reader: reader, table: table, reg: reg, cfg: c}, nil
}

// fillTable runs one Enumerate pass, repairing each entry name before
// admitting it to the table; an entry whose name cannot be repaired to
// valid UTF-8 is dropped.
func fillTable(reader archivereader.Reader) (*entry.Table, error) {
	guard := encodingguard.New()
	table := entry.NewTable()
	err := reader.Enumerate(func(index int, path string) {
		if repaired, ok := guard.RepairName(path); ok {
			table.Add(index, repaired)
		}
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// preExtractActionsXML tags each pair's actions entry with a throwaway
// Unspecified target, runs one decode pass against a memory sink, reads
// the bytes back by ordinal, and clears the temporary targets again. The
// XMLs must be parsed before the final pass so the image and sound files
// they reference can be tagged for it.
func preExtractActionsXML(reader archivereader.Reader, table *entry.Table, pairs []discovery.Pair) ([][]byte, error) {
	discovery.TagForPreExtraction(pairs)
	defer discovery.ClearPreExtractionTargets(pairs)

	sink := extract.NewMemorySink()
	if err := decodeTargets(reader, table, sink); err != nil {
		return nil, err
	}

	out := make([][]byte, len(pairs))
	for i := range pairs {
		b, _ := sink.Get(strconv.Itoa(i))
		out[i] = b
	}
	return out, nil
}

// decodeTargets runs one full Decode pass, re-aligning the raw stream
// against table with Realign and driving sink's begin_write/write_next/
// end_write state machine for every entry carrying at least one target.
func decodeTargets(reader archivereader.Reader, table *entry.Table, sink extract.Extractor) error {
	table.ResetCursor()
	return reader.Decode(func(index int, path string, body io.Reader) error {
		e, ok := table.Realign(index)
		if !ok || !e.HasTargets() {
			return nil
		}

		for _, target := range e.Targets {
			if err := sink.BeginWrite(target); err != nil {
				return err
			}
		}

		buf := make([]byte, 32*1024)
		var offset int64
		for {
			n, readErr := body.Read(buf)
			if n > 0 {
				if err := sink.WriteNext(offset, buf[:n]); err != nil {
					return err
				}
				offset += int64(n)
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return readErr
			}
		}
		return sink.EndWrite()
	})
}

// Shimejis returns every discovered mascot's name, with no duplicates.
func (a *Archive) Shimejis() []string {
	return a.reg.SortedNames()
}

// Extract runs the final decode pass into outputDir, using a
// FilesystemSink or, when AnalyzeConfig.OnlyThumbnails was set, a
// ThumbnailSink.
func (a *Archive) Extract(outputDir string) error {
	var sink extract.Extractor
	if a.cfg.OnlyThumbnails {
		sink = extract.NewThumbnailSink(outputDir)
	} else {
		sink = extract.NewFilesystemSink(outputDir)
	}
	return a.ExtractTo(sink)
}

// ExtractTo runs the final decode pass against a caller-supplied sink,
// then emits the default XMLs for any mascot discovered with none of its
// own, then finalizes the sink.
func (a *Archive) ExtractTo(sink extract.Extractor) error {
	if err := decodeTargets(a.reader, a.table, sink); err != nil {
		return ErrorSinkFailed.Error(err)
	}
	if err := defaultxml.Emit(sink, a.reg.DefaultXMLMascots); err != nil {
		return ErrorSinkFailed.Error(err)
	}
	return sink.Finalize()
}
