package encoder

import (
	"bytes"
	"fmt"
	"os"

	"github.com/backmassage/rendercut/internal/compile"
)

// ebmlMagic opens Matroska (and WebM) files.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// verifyOutput checks that the produced artifact exists, is non-empty, and
// (for containers with a known signature) starts with a well-formed header.
// A zero-exit encoder run with a broken artifact is still a failure.
func verifyOutput(path string, container compile.Container) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("output artifact missing: %w", err)
	}
	if fi.Size() == 0 {
		return 0, fmt.Errorf("output artifact %s is empty", path)
	}

	header := make([]byte, 12)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("read output artifact: %w", err)
	}
	defer f.Close()
	n, err := f.Read(header)
	if err != nil || n < len(header) {
		return 0, fmt.Errorf("output artifact %s truncated", path)
	}

	switch container {
	case compile.ContainerMP4, compile.ContainerMOV:
		// ISO BMFF: box size (4 bytes) then "ftyp".
		if !bytes.Equal(header[4:8], []byte("ftyp")) {
			return 0, fmt.Errorf("output artifact %s is not a valid %s file", path, container)
		}
	case compile.ContainerMKV:
		if !bytes.Equal(header[:4], ebmlMagic) {
			return 0, fmt.Errorf("output artifact %s is not a valid mkv file", path)
		}
	}
	return fi.Size(), nil
}
