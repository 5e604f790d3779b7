package geometry

import (
	"sync"

	"github.com/notargets/stlview/types"
	"github.com/notargets/stlview/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Summary is a quick health report of a decoded solid
type Summary struct {
	Name             string  `yaml:"Name"`
	Facets           int     `yaml:"Facets"`
	SurfaceArea      float64 `yaml:"SurfaceArea"`
	DegenerateFacets int     `yaml:"DegenerateFacets"` // zero area triangles
	ZeroNormals      int     `yaml:"ZeroNormals"`      // stored normal left as 0,0,0
	FlippedNormals   int     `yaml:"FlippedNormals"`   // stored normal opposes the vertex winding
	NaNFacets        int     `yaml:"NaNFacets"`        // any component is NaN, left out of the area
}

func toVec(v types.Vertex) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// windingNormal is the unnormalized normal implied by the vertex order
func windingNormal(f types.Facet) r3.Vec {
	a := toVec(f.Vertices[0])
	return r3.Cross(r3.Sub(toVec(f.Vertices[1]), a), r3.Sub(toVec(f.Vertices[2]), a))
}

func facetFloats(f types.Facet) []float32 {
	return []float32{f.Normal.I, f.Normal.J, f.Normal.K,
		f.Vertices[0].X, f.Vertices[0].Y, f.Vertices[0].Z,
		f.Vertices[1].X, f.Vertices[1].Y, f.Vertices[1].Z,
		f.Vertices[2].X, f.Vertices[2].Y, f.Vertices[2].Z}
}

func FacetArea(f types.Facet) float64 {
	return 0.5 * r3.Norm(windingNormal(f))
}

type partialSummary struct {
	degenerate, zeroNormals, flipped, nan int
}

// Summarize walks the facets in parallel, one partial result per partition
func Summarize(solid *types.Solid, procLimit int) (s Summary) {
	var (
		K        = solid.NumFacets()
		NP       = utils.ParallelDegreeFor(procLimit, K)
		areas    = make([]float64, K)
		partials = make([]partialSummary, NP)
		wg       = sync.WaitGroup{}
	)
	s.Name, s.Facets = solid.Name, K
	if NP == 0 {
		return
	}
	pm := utils.NewPartitionMap(NP, K)
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			var ps partialSummary
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				f := solid.Facets[k]
				if utils.IsNan(facetFloats(f)) {
					ps.nan++
					continue
				}
				wn := windingNormal(f)
				areas[k] = 0.5 * r3.Norm(wn)
				if areas[k] == 0 {
					ps.degenerate++
				}
				stored := r3.Vec{X: float64(f.Normal.I), Y: float64(f.Normal.J), Z: float64(f.Normal.K)}
				switch {
				case stored == r3.Vec{}:
					ps.zeroNormals++
				case r3.Dot(stored, wn) < 0:
					ps.flipped++
				}
			}
			partials[np] = ps
		}(np)
	}
	wg.Wait()
	s.SurfaceArea = floats.Sum(areas)
	for _, ps := range partials {
		s.DegenerateFacets += ps.degenerate
		s.ZeroNormals += ps.zeroNormals
		s.FlippedNormals += ps.flipped
		s.NaNFacets += ps.nan
	}
	return
}
