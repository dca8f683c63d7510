package archivereader

import (
	"bytes"
	"io"
)

// maxNestedArchiveBytes caps how much of a nested archive is spooled into
// memory before recursing into it. An entry larger than this is treated
// as an opaque leaf instead.
const maxNestedArchiveBytes = 50 * 1024 * 1024

// spool reads all of r into memory, up to limit+1 bytes. ok is false when r
// held more than limit bytes; buf is nil in that case.
func spool(r io.Reader, limit int64) (buf []byte, ok bool, err error) {
	lr := io.LimitReader(r, limit+1)
	var b bytes.Buffer
	if _, err := io.Copy(&b, lr); err != nil {
		return nil, false, err
	}
	if int64(b.Len()) > limit {
		return nil, false, nil
	}
	return b.Bytes(), true, nil
}
