// Package extract implements the extractor sinks: stateful,
// single-active-write destinations the orchestrator drives once per decode
// pass. BeginWrite may be called several times before EndWrite to open
// parallel destinations, so one archive entry can satisfy several mascots'
// outputs without being re-read.
package extract

import (
	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/internal/broadcast"
)

// Extractor is bound to exactly one archive decode pass at a time. The
// driving loop calls BeginWrite once (or, for a broadcast entry, several
// times in a row) before the entry's bytes arrive via WriteNext, then
// EndWrite once the entry is exhausted.
type Extractor interface {
	// BeginWrite opens a new output destination for target. Calling it
	// again before EndWrite opens an additional parallel destination;
	// all subsequently written bytes go to every open destination.
	BeginWrite(target entry.Target) error
	// WriteNext writes data, the chunk of the current entry found at
	// offset, to every destination opened since the last EndWrite.
	WriteNext(offset int64, data []byte) error
	// EndWrite closes every destination opened for the current entry.
	EndWrite() error
	// Finalize runs once, after the pass's last EndWrite.
	Finalize() error
}

// broadcaster is the shared bookkeeping every stock Extractor embeds: a
// broadcast.Writer fed by WriteNext, plus the list of io.Closers BeginWrite
// accumulated since the last EndWrite.
type broadcaster struct {
	writer  *broadcast.Writer
	closers []func() error
}

func newBroadcaster() broadcaster {
	return broadcaster{writer: broadcast.New()}
}

func (b *broadcaster) writeNext(_ int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := b.writer.Write(data)
	return err
}

func (b *broadcaster) endWrite() error {
	var firstErr error
	for _, close := range b.closers {
		if err := close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.writer = broadcast.New()
	b.closers = nil
	return firstErr
}
