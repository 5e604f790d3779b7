package types

// Vertex is one corner of a facet
type Vertex struct {
	X, Y, Z float32
}

// Normal is the outward facet normal as stored in the file
type Normal struct {
	I, J, K float32
}

// Facet is one triangle of the surface, vertices in file winding order
type Facet struct {
	Normal   Normal
	Vertices [3]Vertex
}

// Solid is a decoded mesh. Facets are in file order and the Solid is never
// modified after the parser hands it out, so it can be read from any goroutine.
type Solid struct {
	Name   string
	Facets []Facet
}

func NewSolid(name string, facets []Facet) *Solid {
	return &Solid{
		Name:   name,
		Facets: facets,
	}
}

func (s *Solid) NumFacets() int {
	if s == nil {
		return 0
	}
	return len(s.Facets)
}

// FileKind is the result of sniffing the first bytes of an STL file
type FileKind uint8

const (
	Unknown FileKind = iota
	Binary
	ASCII
)

func (fk FileKind) String() string {
	if int(fk) >= len(fileKindNames) {
		return "Unknown"
	}
	return fileKindNames[fk]
}

var fileKindNames = [...]string{"Unknown", "Binary", "ASCII"}
