package extract

import (
	"os"
	"path/filepath"

	"github.com/pixelfinder/shimejifinder/entry"
)

// FilesystemSink is the stock extractor used by the final decode pass: it
// lays assets out at output/{mascot}.mascot/[img|sound|]/{output_name},
// with XML targets landing directly at the mascot's root instead of a
// subdirectory.
type FilesystemSink struct {
	broadcaster
	outputDir string
}

// NewFilesystemSink returns a sink rooted at outputDir.
func NewFilesystemSink(outputDir string) *FilesystemSink {
	return &FilesystemSink{broadcaster: newBroadcaster(), outputDir: outputDir}
}

func (s *FilesystemSink) BeginWrite(target entry.Target) error {
	path, err := s.targetPath(target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s.writer.Add(f)
	s.closers = append(s.closers, f.Close)
	return nil
}

func (s *FilesystemSink) targetPath(target entry.Target) (string, error) {
	mascotDir := filepath.Join(s.outputDir, target.MascotName+".mascot")
	switch target.Kind {
	case entry.Image:
		return filepath.Join(mascotDir, "img", target.OutputName), nil
	case entry.Sound:
		return filepath.Join(mascotDir, "sound", target.OutputName), nil
	case entry.XML:
		return filepath.Join(mascotDir, target.OutputName), nil
	default:
		return filepath.Join(mascotDir, target.OutputName), nil
	}
}

func (s *FilesystemSink) WriteNext(offset int64, data []byte) error {
	return s.writeNext(offset, data)
}

func (s *FilesystemSink) EndWrite() error {
	return s.endWrite()
}

func (s *FilesystemSink) Finalize() error {
	return nil
}
