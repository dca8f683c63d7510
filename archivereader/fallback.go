package archivereader

import (
	"bytes"
	"fmt"

	"github.com/sirupsen/logrus"
)

// fallbackBackend is the second backend Open tries: ZIP and TAR only, no
// nested-archive recursion, no RAR/7z support. Some inputs are valid
// ZIP/TAR but trip up the general backend's stricter sniffing (e.g. a tar
// stream with no leading gzip or ustar magic within the first 512 bytes).
type fallbackBackend struct{}

func (fallbackBackend) open(src Source, log logrus.FieldLogger) (Reader, error) {
	if _, err := fallbackParse(src); err != nil {
		return nil, err
	}
	return &reopeningReader{src: src, log: log, parse: fallbackParse}, nil
}

func fallbackParse(src Source) ([]rawEntry, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, ok, err := spool(rc, 1<<40)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("source too large for fallback backend")
	}

	if entries, err := parseZip(data); err == nil {
		return entries, nil
	}
	if entries, err := parseTar(bytes.NewReader(data)); err == nil && len(entries) > 0 {
		return entries, nil
	}
	return nil, fmt.Errorf("fallback backend: not a recognizable zip or tar stream")
}
