package archivereader

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pixelfinder/shimejifinder/pathutil"
)

type format int

const (
	formatUnknown format = iota
	formatZip
	formatTar
	formatTarGz
	formatRar
	format7z
)

var (
	zipMagic    = []byte("PK\x03\x04")
	rarMagic    = []byte("Rar!\x1a\x07")
	sevenZMagic = []byte("7z\xbc\xaf\x27\x1c")
	gzipMagic   = []byte{0x1f, 0x8b}
	tarMagic    = []byte("ustar")
)

// sniff peeks at up to 512 bytes of r (without consuming them from the
// returned reader) and reports the detected format, falling back to the
// name's extension when the magic bytes are inconclusive (a tar stream's
// "ustar" magic sits 257 bytes in, and a headerless/legacy tar has none at
// all).
func sniff(r io.Reader, name string) (format, *bufio.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF {
		return formatUnknown, br, err
	}

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return formatZip, br, nil
	case bytes.HasPrefix(head, rarMagic):
		return formatRar, br, nil
	case bytes.HasPrefix(head, sevenZMagic):
		return format7z, br, nil
	case bytes.HasPrefix(head, gzipMagic):
		return formatTarGz, br, nil
	case len(head) > 262 && bytes.Equal(head[257:262], tarMagic):
		return formatTar, br, nil
	}

	switch pathutil.Extension(pathutil.ToLower(name)) {
	case "zip":
		return formatZip, br, nil
	case "rar":
		return formatRar, br, nil
	case "7z":
		return format7z, br, nil
	case "tgz":
		return formatTarGz, br, nil
	case "tar":
		return formatTar, br, nil
	case "gz":
		return formatTarGz, br, nil
	}
	return formatUnknown, br, nil
}

// nestedFormatByName reports whether the extension marks an entry as an
// archive eligible for one level of nested recursion.
func nestedFormatByName(lowerName string) (format, bool) {
	switch pathutil.Extension(lowerName) {
	case "zip":
		return formatZip, true
	case "rar":
		return formatRar, true
	case "7z":
		return format7z, true
	default:
		return formatUnknown, false
	}
}
