package readfiles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Upper bound on the up-front allocation for the record buffer. The declared
// count comes from the file and is not trusted until the bytes have been read.
const maxPrealloc = 64 << 20

// ReadFacetBuffer consumes a binary STL stream positioned at offset 0 and
// returns the declared record count with exactly count*RecordSize raw record
// bytes. Nothing is decoded here. Bytes after the last record are left unread.
func ReadFacetBuffer(r io.Reader) (count uint32, buf []byte, err error) {
	var header [HeaderSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return 0, nil, classifyShortRead(err, ErrTruncatedHeader, "header")
	}
	var countBytes [CountSize]byte
	if _, err = io.ReadFull(r, countBytes[:]); err != nil {
		return 0, nil, classifyShortRead(err, ErrTruncatedCount, "facet count")
	}
	count = binary.LittleEndian.Uint32(countBytes[:])
	if buf, err = readRecords(r, int64(count)*RecordSize); err != nil {
		if errors.Is(err, ErrTruncatedRecords) {
			err = fmt.Errorf("%w: declared %d facets", err, count)
		}
		return 0, nil, err
	}
	return
}

// readRecords grows the buffer as bytes arrive instead of trusting totalBytes
// for the allocation
func readRecords(r io.Reader, totalBytes int64) (buf []byte, err error) {
	var (
		filled int
		n      int
	)
	buf = make([]byte, min(totalBytes, maxPrealloc))
	for {
		n, err = io.ReadFull(r, buf[filled:])
		filled += n
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w (%d of %d bytes)", ErrTruncatedRecords, filled, totalBytes)
			}
			return nil, fmt.Errorf("failed to read facet records: %w", err)
		}
		if int64(filled) == totalBytes {
			return buf, nil
		}
		next := min(int64(2*len(buf)), totalBytes)
		buf = append(buf, make([]byte, next-int64(len(buf)))...)
	}
}

func classifyShortRead(err, truncated error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncated
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}
