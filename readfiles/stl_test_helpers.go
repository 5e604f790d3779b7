package readfiles

import (
	"bytes"

	"github.com/notargets/stlview/types"
)

// PyramidFacets is a square based pyramid, four sides and no base
func PyramidFacets() []types.Facet {
	apex := types.Vertex{X: 0.5, Y: 0.5, Z: 1}
	b := [4]types.Vertex{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	n := [4]types.Normal{{I: 0, J: -0.8944272, K: 0.4472136}, {I: 0.8944272, J: 0, K: 0.4472136},
		{I: 0, J: 0.8944272, K: 0.4472136}, {I: -0.8944272, J: 0, K: 0.4472136}}
	facets := make([]types.Facet, 4)
	for i := 0; i < 4; i++ {
		facets[i] = types.Facet{Normal: n[i], Vertices: [3]types.Vertex{b[i], b[(i+1)%4], apex}}
	}
	return facets
}

// NumberedFacets returns n facets whose floats encode their index, so any
// reordering, loss or duplication shows up in a comparison
func NumberedFacets(n int) []types.Facet {
	facets := make([]types.Facet, n)
	for k := range facets {
		base := float32(k * 12)
		facets[k] = types.Facet{
			Normal: types.Normal{I: base, J: base + 1, K: base + 2},
			Vertices: [3]types.Vertex{
				{X: base + 3, Y: base + 4, Z: base + 5},
				{X: base + 6, Y: base + 7, Z: base + 8},
				{X: base + 9, Y: base + 10, Z: base + 11},
			},
		}
	}
	return facets
}

// BinarySTL encodes facets into an in-memory binary STL file
func BinarySTL(header string, facets []types.Facet) []byte {
	var buf bytes.Buffer
	if err := WriteBinarySTL(&buf, header, facets); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
