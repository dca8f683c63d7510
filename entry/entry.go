// Package entry holds the EntryTable: the filtered, indexed view over an
// archive's regular files that every other pipeline stage (FolderTree,
// Discovery, Extractor) reads and annotates.
package entry

import "github.com/pixelfinder/shimejifinder/pathutil"

// Kind classifies what role an ExtractTarget plays in the normalized output
// layout.
type Kind uint8

const (
	// Unspecified is used only during the in-memory XML pre-extraction
	// pass, where the memory sink keys purely by output name.
	Unspecified Kind = iota
	Image
	Sound
	XML
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Sound:
		return "sound"
	case XML:
		return "xml"
	default:
		return "unspecified"
	}
}

// Target is an (entry -> output) instruction produced by Discovery and
// consumed by the Extractor's second pass.
type Target struct {
	MascotName string
	OutputName string
	Kind       Kind
}

// admittedExtensions is the filter Table.Add applies: anything else never
// becomes an Entry.
var admittedExtensions = map[string]bool{
	"png": true,
	"wav": true,
	"xml": true,
}

// Admits reports whether a lower-cased extension survives the table filter.
func Admits(lowerExt string) bool {
	return admittedExtensions[lowerExt]
}

// Entry is one admitted regular file from the archive.
type Entry struct {
	Index     int
	Path      string
	LowerName string
	LowerExt  string
	Targets   []Target
}

func newEntry(index int, path string) Entry {
	name := pathutil.LastComponent(path)
	return Entry{
		Index:     index,
		Path:      path,
		LowerName: pathutil.ToLower(name),
		LowerExt:  pathutil.ToLower(pathutil.Extension(name)),
	}
}

// HasTargets reports whether any Target has been attached, which discovery
// uses to skip entries a prior phase already claimed.
func (e *Entry) HasTargets() bool {
	return len(e.Targets) > 0
}

// AddTarget appends one Target. An Entry may carry several, in which case
// the extractor broadcasts its bytes to every output.
func (e *Entry) AddTarget(t Target) {
	e.Targets = append(e.Targets, t)
}

// ClearTargets removes every ExtractTarget, used to undo the temporary
// UNSPECIFIED target added for the in-memory XML pre-extraction pass.
func (e *Entry) ClearTargets() {
	e.Targets = nil
}
