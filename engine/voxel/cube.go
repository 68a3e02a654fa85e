/*
Package voxel turns a unit cube on the integer grid into a triangle mesh.

Corners of the cube are addressed by a 3-bit code:

	N| X Y Z
	========
	0| 0 0 0
	1| 0 0 1
	2| 0 1 0
	3| 0 1 1
	4| 1 0 0
	5| 1 0 1
	6| 1 1 0
	7| 1 1 1
	_______
	P: 2 1 0 -- bit position

Every face owns its own four vertices, so corners shared by several faces are
emitted once per face and flat shading survives normal recalculation.
*/
package voxel

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/anima-cubes/engine/math"
)

const (
	// CornerCount is the number of corners of a cube.
	CornerCount = 8
	// FaceCount is the number of faces of a cube.
	FaceCount = 6
	// VerticesPerFace is the number of vertices emitted for each face.
	VerticesPerFace = 4
	// TrianglesPerFace is the number of triangles emitted for each face.
	TrianglesPerFace = 2

	// VertexCount is the number of vertices of a built cube.
	VertexCount = FaceCount * VerticesPerFace
	// TriangleCount is the number of triangles of a built cube.
	TriangleCount = FaceCount * TrianglesPerFace
	// IndexCount is the length of the triangle index buffer of a built cube.
	IndexCount = TriangleCount * 3
)

// Corner returns the position of corner i of the unit cube anchored at origin.
// Bit 2 of i offsets X, bit 1 offsets Y and bit 0 offsets Z.
func Corner(origin math.IVec3, i int) math.IVec3 {
	if i < 0 || i >= CornerCount {
		panic(fmt.Sprintf("voxel: corner index %d out of range", i))
	}
	return origin.Add(math.IVec3{
		X: i >> 2 & 1,
		Y: i >> 1 & 1,
		Z: i >> 0 & 1,
	})
}

// Corners returns all 8 corners of the unit cube anchored at origin, indexed
// by their corner code.
func Corners(origin math.IVec3) [CornerCount]math.IVec3 {
	var out [CornerCount]math.IVec3
	for i := 0; i < CornerCount; i++ {
		out[i] = Corner(origin, i)
	}
	return out
}

// Face identifies one of the 6 cube faces.
//
//	N| S A |Side    | X | Y | Z |
//	=============================
//	0| 0 0 |Back    | 0 | 0 |-1 |
//	1| 1 1 |Up      | 0 | 1 | 0 |
//	2| 0 2 |Left    |-1 | 0 | 0 |
//	3| 1 0 |Forward | 0 | 0 | 1 |
//	4| 0 1 |Down    | 0 |-1 | 0 |
//	5| 1 2 |Right   | 1 | 0 | 0 |
//
// S is the sign, A the bit position held fixed. Bit position 0 is Z, 1 is Y
// and 2 is X.
type Face int

const (
	FaceBack Face = iota
	FaceUp
	FaceLeft
	FaceForward
	FaceDown
	FaceRight
)

var faceNames = [FaceCount]string{"back", "up", "left", "forward", "down", "right"}

func (f Face) String() string {
	if f < 0 || f >= FaceCount {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

func (f Face) check() {
	if f < 0 || f >= FaceCount {
		panic(fmt.Sprintf("voxel: face index %d out of range", int(f)))
	}
}

// Sign is 0 for the face on the near side of its axis and 1 for the far side.
func (f Face) Sign() int {
	f.check()
	return int(f) % 2
}

// Axis is the corner code bit position held fixed across the face.
func (f Face) Axis() int {
	f.check()
	return int(f) % 3
}

// Corners returns the corner codes of the face sorted ascending. After the
// sort the first and last codes sit on one diagonal of the quad and the two
// middle codes on the other.
func (f Face) Corners() [VerticesPerFace]int {
	sign, axis := f.Sign(), f.Axis()
	a := sign << axis
	var c [VerticesPerFace]int
	c[0] = a + (0 << ((axis + 1) % 3)) + (0 << ((axis + 2) % 3))
	c[1] = a + (0 << ((axis + 1) % 3)) + (1 << ((axis + 2) % 3))
	c[2] = a + (1 << ((axis + 1) % 3)) + (0 << ((axis + 2) % 3))
	c[3] = a + (1 << ((axis + 1) % 3)) + (1 << ((axis + 2) % 3))
	slices.Sort(c[:])
	return c
}

// Quad layout of the sorted corners; min and max are diagonal:
//
//	6---7
//	| 5 |
//	4---5---7
//	| 4 | 3 |
//	0---1---3---7
//	    | 2 | 1 |
//	    0---2---6
//	        | 0 |
//	        0---4
//
// Faces 0-2 and faces 3-5 need opposite patterns for outward winding.
var quadTriangles = [2][TrianglesPerFace * 3]int{
	{0, 1, 3, 0, 3, 2},
	{0, 2, 3, 0, 3, 1},
}

// Triangles returns the two triangles of the face as positions into the
// sorted corner list.
func (f Face) Triangles() [TrianglesPerFace * 3]int {
	f.check()
	if f < 3 {
		return quadTriangles[0]
	}
	return quadTriangles[1]
}

// Mesh is the output of a cube build.
type Mesh struct {
	// Vertices holds every emitted position in insertion order.
	Vertices []math.Vec3
	// Indices groups vertex indices in triples, one per triangle.
	Indices []uint32
}

// TriangleCount returns the number of index triples in the mesh.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CubeMeshBuilder assembles cube meshes into two growable buffers. A builder
// can be reused for any number of builds but must not be shared between
// goroutines.
type CubeMeshBuilder struct {
	vertices []math.Vec3
	indices  []uint32
}

func NewCubeMeshBuilder() *CubeMeshBuilder {
	return &CubeMeshBuilder{
		vertices: make([]math.Vec3, 0, VertexCount),
		indices:  make([]uint32, 0, IndexCount),
	}
}

func (b *CubeMeshBuilder) reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

func (b *CubeMeshBuilder) addVertex(p math.IVec3) uint32 {
	index := uint32(len(b.vertices))
	b.vertices = append(b.vertices, p.ToVec3())
	return index
}

func (b *CubeMeshBuilder) addTriangle(v1, v2, v3 uint32) {
	b.indices = append(b.indices, v1, v2, v3)
}

// Build triangulates the unit cube at origin and returns the vertex and
// triangle index buffers. The returned slices are copies and stay valid
// after the builder is reused. Positions are float32, so every origin
// component must lie within ±math.MaxGridCoordinate; beyond that corners
// collapse.
func (b *CubeMeshBuilder) Build(origin math.IVec3) ([]math.Vec3, []uint32) {
	b.reset()

	corners := Corners(origin)
	for f := Face(0); f < FaceCount; f++ {
		codes := f.Corners()

		var quad [VerticesPerFace]uint32
		for i, code := range codes {
			quad[i] = b.addVertex(corners[code])
		}

		t := f.Triangles()
		b.addTriangle(quad[t[0]], quad[t[1]], quad[t[2]])
		b.addTriangle(quad[t[3]], quad[t[4]], quad[t[5]])
	}

	return slices.Clone(b.vertices), slices.Clone(b.indices)
}

// BuildMesh is Build wrapped into a Mesh value.
func (b *CubeMeshBuilder) BuildMesh(origin math.IVec3) Mesh {
	vertices, indices := b.Build(origin)
	return Mesh{Vertices: vertices, Indices: indices}
}

// Build triangulates the unit cube at origin with a throwaway builder.
func Build(origin math.IVec3) Mesh {
	return NewCubeMeshBuilder().BuildMesh(origin)
}
