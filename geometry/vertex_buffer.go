package geometry

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/notargets/stlview/types"
	"github.com/notargets/stlview/utils"
)

// FloatsPerVertex is the interleaved layout x, y, z, nx, ny, nz. Every vertex
// of a facet carries the facet normal, so shading is flat.
const FloatsPerVertex = 6

// Buffers is a solid flattened for a GPU style renderer
type Buffers struct {
	Vertices []float32
	Indices  []uint32
}

func NewBuffers(solid *types.Solid, procLimit int) (b *Buffers, err error) {
	var indices []uint32
	if indices, err = NewIndexBuffer(solid); err != nil {
		return
	}
	b = &Buffers{
		Vertices: NewVertexBuffer(solid, procLimit),
		Indices:  indices,
	}
	return
}

// NumVertices is the number of interleaved vertices in the buffer
func (b *Buffers) NumVertices() int {
	return len(b.Vertices) / FloatsPerVertex
}

// NewVertexBuffer fills the interleaved buffer in parallel, each worker
// writing only the slots of its own facet range
func NewVertexBuffer(solid *types.Solid, procLimit int) (vb []float32) {
	var (
		K  = solid.NumFacets()
		NP = utils.ParallelDegreeFor(procLimit, K)
		wg = sync.WaitGroup{}
	)
	vb = make([]float32, 3*FloatsPerVertex*K)
	if NP == 0 {
		return
	}
	pm := utils.NewPartitionMap(NP, K)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				f := solid.Facets[k]
				for v := 0; v < 3; v++ {
					ind := (3*k + v) * FloatsPerVertex
					vert := f.Vertices[v]
					vb[ind], vb[ind+1], vb[ind+2] = vert.X, vert.Y, vert.Z
					vb[ind+3], vb[ind+4], vb[ind+5] = f.Normal.I, f.Normal.J, f.Normal.K
				}
			}
		}(np)
	}
	wg.Wait()
	return
}

// NewIndexBuffer lists the triangles 0,1,2, 3,4,5, ... of the vertex buffer
func NewIndexBuffer(solid *types.Solid) (ib []uint32, err error) {
	nIndex := 3 * solid.NumFacets()
	if uint64(nIndex) > math.MaxUint32 {
		return nil, fmt.Errorf("%d facets overflow a 32 bit index buffer", solid.NumFacets())
	}
	ib = make([]uint32, nIndex)
	for i := range ib {
		ib[i] = uint32(i)
	}
	return
}

// Write stores the buffers as little endian length prefixed arrays
func (b *Buffers) Write(w io.Writer) (err error) {
	for _, v := range []any{int64(len(b.Vertices)), b.Vertices, int64(len(b.Indices)), b.Indices} {
		if err = binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write geometry buffers: %w", err)
		}
	}
	return
}

// maxChunk bounds each allocation made from a length read off the stream
const maxChunk = 1 << 20

// ReadBuffers reads what Write stored. Declared lengths are untrusted, arrays
// are read in chunks so a bogus length fails on the short read instead of
// allocating the declared size.
func ReadBuffers(r io.Reader) (b *Buffers, err error) {
	var (
		lenVertices, lenIndices int64
	)
	b = &Buffers{}
	if err = binary.Read(r, binary.LittleEndian, &lenVertices); err != nil {
		return nil, fmt.Errorf("failed to read vertex count: %w", err)
	}
	if lenVertices < 0 || lenVertices%(3*FloatsPerVertex) != 0 {
		return nil, fmt.Errorf("invalid vertex buffer length %d", lenVertices)
	}
	if b.Vertices, err = readArray[float32](r, lenVertices); err != nil {
		return nil, fmt.Errorf("failed to read vertices: %w", err)
	}
	if err = binary.Read(r, binary.LittleEndian, &lenIndices); err != nil {
		return nil, fmt.Errorf("failed to read index count: %w", err)
	}
	if lenIndices < 0 || lenIndices > lenVertices/FloatsPerVertex {
		return nil, fmt.Errorf("invalid index buffer length %d", lenIndices)
	}
	if b.Indices, err = readArray[uint32](r, lenIndices); err != nil {
		return nil, fmt.Errorf("failed to read indices: %w", err)
	}
	return
}

func readArray[T float32 | uint32](r io.Reader, n int64) (a []T, err error) {
	a = make([]T, 0, min(n, maxChunk))
	for remaining := n; remaining > 0; {
		chunk := make([]T, min(remaining, maxChunk))
		if err = binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, err
		}
		a = append(a, chunk...)
		remaining -= int64(len(chunk))
	}
	return
}
