package metadata

import (
	"github.com/spaghettifunk/anima-cubes/engine/math"
)

type Mesh struct {
	UniqueID      uint32
	Generation    uint8
	GeometryCount uint16
	Geometries    []*Geometry
	Transform     *math.Transform
}

// VertexCount sums the vertices of every geometry of the mesh.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, g := range m.Geometries {
		n += len(g.Vertices)
	}
	return n
}

// TriangleCount sums the triangles of every geometry of the mesh.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, g := range m.Geometries {
		n += len(g.Indices) / 3
	}
	return n
}
