package readfiles

import "errors"

// Binary STL layout, all values little endian:
//
//	offset 0   80 bytes   header, ignored
//	offset 80  4 bytes    uint32 record count N
//	offset 84  50*N bytes records
//
// Each record is 12 float32 (normal i,j,k then three x,y,z vertices) and a
// 2 byte attribute field that carries no geometry.
const (
	HeaderSize      = 80
	CountSize       = 4
	FloatSize       = 4
	FloatsPerRecord = 12
	AttributeSize   = 2
	RecordSize      = FloatsPerRecord*FloatSize + AttributeSize
	ASCIIPrefix     = "solid"
)

var (
	ErrTruncatedHeader  = errors.New("stl: file shorter than the 80 byte header")
	ErrTruncatedCount   = errors.New("stl: file ends inside the facet count")
	ErrTruncatedRecords = errors.New("stl: file holds fewer facet records than declared")
	ErrBufferSize       = errors.New("stl: facet buffer does not match the record count")
)
