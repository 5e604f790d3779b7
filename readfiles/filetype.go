package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/notargets/stlview/types"
)

// SniffFileKind classifies a stream by its first five bytes without consuming
// them, so the same reader can be handed to ReadFacetBuffer afterwards. A
// binary header may start with "solid" too, that ambiguity is part of the
// format and is not second guessed here. The error is the read failure behind
// an Unknown kind.
func SniffFileKind(br *bufio.Reader) (types.FileKind, error) {
	prefix, err := br.Peek(len(ASCIIPrefix))
	switch {
	case err == nil:
		if string(prefix) == ASCIIPrefix {
			return types.ASCII, nil
		}
		return types.Binary, nil
	case errors.Is(err, io.EOF):
		// Short but readable. Anything under 84 bytes fails as a truncated
		// header or count, so an empty file is corrupt rather than unknown.
		return types.Binary, nil
	default:
		return types.Unknown, fmt.Errorf("failed to read file type: %w", err)
	}
}

// DetectFileKind opens the named file just long enough to sniff its type
func DetectFileKind(filename string) types.FileKind {
	file, err := os.Open(filename)
	if err != nil {
		return types.Unknown
	}
	defer file.Close()
	kind, _ := SniffFileKind(bufio.NewReaderSize(file, HeaderSize))
	return kind
}
