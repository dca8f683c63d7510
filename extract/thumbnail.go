package extract

import (
	"os"
	"path/filepath"

	"github.com/pixelfinder/shimejifinder/entry"
)

// ThumbnailSink writes only the first image target encountered for each
// mascot, to output/{mascot}.png. Every other target is a
// deliberate no-op: BeginWrite opens nothing for it, so the bytes that
// follow are silently discarded by the broadcaster's empty writer.
type ThumbnailSink struct {
	broadcaster
	outputDir string
	done      map[string]bool
}

// NewThumbnailSink returns a sink rooted at outputDir.
func NewThumbnailSink(outputDir string) *ThumbnailSink {
	return &ThumbnailSink{broadcaster: newBroadcaster(), outputDir: outputDir, done: make(map[string]bool)}
}

func (s *ThumbnailSink) BeginWrite(target entry.Target) error {
	if target.Kind != entry.Image || s.done[target.MascotName] {
		return nil
	}
	path := filepath.Join(s.outputDir, target.MascotName+".png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s.writer.Add(f)
	s.closers = append(s.closers, f.Close)
	s.done[target.MascotName] = true
	return nil
}

func (s *ThumbnailSink) WriteNext(offset int64, data []byte) error {
	return s.writeNext(offset, data)
}

func (s *ThumbnailSink) EndWrite() error {
	return s.endWrite()
}

func (s *ThumbnailSink) Finalize() error {
	return nil
}
