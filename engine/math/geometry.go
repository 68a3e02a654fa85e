package math

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/anima-cubes/engine/core"
)

// NormalPolicy selects how per-vertex normals are rebuilt from triangles.
type NormalPolicy uint8

const (
	// Each triangle writes its face normal to its own vertices.
	NormalPolicyFlat NormalPolicy = iota
	// Every adjacent triangle contributes equally, then the sum is normalized.
	NormalPolicySmooth
	// Like NormalPolicySmooth, but each contribution is scaled by triangle area.
	NormalPolicySmoothWeighted
)

func (p NormalPolicy) String() string {
	switch p {
	case NormalPolicyFlat:
		return "flat"
	case NormalPolicySmooth:
		return "smooth"
	case NormalPolicySmoothWeighted:
		return "smooth-weighted"
	default:
		return fmt.Sprintf("NormalPolicy(%d)", uint8(p))
	}
}

// ParseNormalPolicy maps configuration text to a policy. An empty string
// selects NormalPolicyFlat.
func ParseNormalPolicy(s string) (NormalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "flat":
		return NormalPolicyFlat, nil
	case "smooth":
		return NormalPolicySmooth, nil
	case "smooth-weighted", "weighted":
		return NormalPolicySmoothWeighted, nil
	default:
		return NormalPolicyFlat, fmt.Errorf("unknown normal policy %q", s)
	}
}

// GeometryRecalculateNormals rebuilds the normals of vertices from the winding
// of indices using the given policy.
func GeometryRecalculateNormals(policy NormalPolicy, vertices []Vertex3D, indices []uint32) {
	switch policy {
	case NormalPolicySmooth:
		GeometryGenerateSmoothNormals(vertices, indices, false)
	case NormalPolicySmoothWeighted:
		GeometryGenerateSmoothNormals(vertices, indices, true)
	default:
		GeometryGenerateNormals(vertices, indices)
	}
}

func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		normal := edge1.Cross(edge2).Normalized()

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryGenerateSmoothNormals accumulates the normal of every triangle that
// references a vertex and normalizes the sum. The raw cross product has a
// length of twice the triangle area, so weighted mode uses it as is.
func GeometryGenerateSmoothNormals(vertices []Vertex3D, indices []uint32, weighted bool) {
	acc := make([]Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		n := edge1.Cross(edge2)
		if !weighted {
			n = n.Normalized()
		}
		acc[i0] = acc[i0].Add(n)
		acc[i1] = acc[i1].Add(n)
		acc[i2] = acc[i2].Add(n)
	}
	for i := range vertices {
		vertices[i].Normal = acc[i].Normalized()
	}
}

// GeometryExtents returns the axis-aligned bounds and center of vertices.
func GeometryExtents(vertices []Vertex3D) (Extents3D, Vec3) {
	if len(vertices) == 0 {
		return Extents3D{}, NewVec3Zero()
	}
	ext := Extents3D{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		p := v.Position
		ext.Min = Vec3{min(ext.Min.X, p.X), min(ext.Min.Y, p.Y), min(ext.Min.Z, p.Z)}
		ext.Max = Vec3{max(ext.Max.X, p.X), max(ext.Max.Y, p.Y), max(ext.Max.Z, p.Z)}
	}
	center := ext.Min.Add(ext.Max).MulScalar(0.5)
	return ext, center
}

func Vertex3dEqual(vert0 Vertex3D, vert1 Vertex3D) bool {
	return vert0.Position.Compare(vert1.Position, K_FLOAT_EPSILON) &&
		vert0.Normal.Compare(vert1.Normal, K_FLOAT_EPSILON)
}

// GeometryDeduplicateVertices welds vertices that are equal in position and
// normal. Indices are rewritten in place to reference the returned slice.
// Vertices of a flat shaded cube differ in normal across faces, so welding
// only collapses shared corners when normals were generated smooth.
func GeometryDeduplicateVertices(vertices []Vertex3D, indices []uint32) []Vertex3D {
	uniqueVerts := make([]Vertex3D, 0, len(vertices))
	remap := make([]uint32, len(vertices))

	for v := range vertices {
		found := false
		for u := range uniqueVerts {
			if Vertex3dEqual(vertices[v], uniqueVerts[u]) {
				remap[v] = uint32(u)
				found = true
				break
			}
		}

		if !found {
			remap[v] = uint32(len(uniqueVerts))
			uniqueVerts = append(uniqueVerts, vertices[v])
		}
	}

	for i, idx := range indices {
		indices[i] = remap[idx]
	}

	removedCount := len(vertices) - len(uniqueVerts)
	core.LogDebug("geometry_deduplicate_vertices: removed %d vertices, orig/now %d/%d.", removedCount, len(vertices), len(uniqueVerts))

	return uniqueVerts
}
