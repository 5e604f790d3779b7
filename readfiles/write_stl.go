package readfiles

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/notargets/stlview/types"
)

// WriteBinarySTL writes facets in the binary layout read by ReadFacetBuffer.
// The header is truncated or zero padded to 80 bytes and attribute fields are
// written as zero.
func WriteBinarySTL(w io.Writer, header string, facets []types.Facet) (err error) {
	bw := bufio.NewWriter(w)
	var hdr [HeaderSize]byte
	copy(hdr[:], header)
	if _, err = bw.Write(hdr[:]); err != nil {
		return
	}
	if err = binary.Write(bw, binary.LittleEndian, uint32(len(facets))); err != nil {
		return
	}
	var rec [RecordSize]byte
	for _, f := range facets {
		EncodeRecord(rec[:], f)
		if _, err = bw.Write(rec[:]); err != nil {
			return
		}
	}
	return bw.Flush()
}

// EncodeRecord is the inverse of DecodeRecord
func EncodeRecord(rec []byte, f types.Facet) {
	_ = rec[RecordSize-1]
	vals := [FloatsPerRecord]float32{
		f.Normal.I, f.Normal.J, f.Normal.K,
		f.Vertices[0].X, f.Vertices[0].Y, f.Vertices[0].Z,
		f.Vertices[1].X, f.Vertices[1].Y, f.Vertices[1].Z,
		f.Vertices[2].X, f.Vertices[2].Y, f.Vertices[2].Z,
	}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(rec[i*FloatSize:], math.Float32bits(v))
	}
	rec[RecordSize-2], rec[RecordSize-1] = 0, 0
}
