package extract

import (
	"bytes"

	"github.com/pixelfinder/shimejifinder/entry"
)

// MemorySink keeps every written target's bytes in memory, keyed by
// output name alone: the XML pre-extraction pass tags its actions entries
// with Unspecified targets whose output name is an ordinal string, and
// reads them back through Get once the pass completes.
type MemorySink struct {
	broadcaster
	blobs map[string]*bytes.Buffer
}

// NewMemorySink returns an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{broadcaster: newBroadcaster(), blobs: make(map[string]*bytes.Buffer)}
}

func (s *MemorySink) BeginWrite(target entry.Target) error {
	buf := &bytes.Buffer{}
	s.blobs[target.OutputName] = buf
	s.writer.Add(buf)
	s.closers = append(s.closers, func() error { return nil })
	return nil
}

func (s *MemorySink) WriteNext(offset int64, data []byte) error {
	return s.writeNext(offset, data)
}

func (s *MemorySink) EndWrite() error {
	return s.endWrite()
}

func (s *MemorySink) Finalize() error {
	return nil
}

// Get returns the bytes written under key (an output_name), if any.
func (s *MemorySink) Get(key string) ([]byte, bool) {
	buf, ok := s.blobs[key]
	if !ok {
		return nil, false
	}
	return buf.Bytes(), true
}
