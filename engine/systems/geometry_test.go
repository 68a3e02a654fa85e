package systems

import (
	"errors"
	"strings"
	"testing"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/math"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-cubes/engine/voxel"
)

func newTestGeometrySystem(t *testing.T, max uint32) *GeometrySystem {
	t.Helper()
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: max})
	if err != nil {
		t.Fatal(err)
	}
	return gs
}

func TestNewGeometrySystemRejectsZeroCount(t *testing.T) {
	if _, err := NewGeometrySystem(&GeometrySystemConfig{}); err == nil {
		t.Error("expected error for zero MaxGeometryCount")
	}
	if _, err := NewGeometrySystem(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestGenerateCubeConfig(t *testing.T) {
	gs := newTestGeometrySystem(t, 4)
	origin := math.IVec3{X: -2, Y: 5, Z: 1}
	config := gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), origin, "", "", math.NormalPolicyFlat)

	if config.VertexCount != voxel.VertexCount || len(config.Vertices) != voxel.VertexCount {
		t.Errorf("vertex count = %d/%d", config.VertexCount, len(config.Vertices))
	}
	if config.IndexCount != voxel.IndexCount || len(config.Indices) != voxel.IndexCount {
		t.Errorf("index count = %d/%d", config.IndexCount, len(config.Indices))
	}
	if !strings.HasPrefix(config.Name, "cube-") || len(config.Name) <= len("cube-") {
		t.Errorf("default name = %q", config.Name)
	}
	if config.MaterialName != metadata.DefaultMaterialName {
		t.Errorf("material = %q", config.MaterialName)
	}
	if config.MinExtents != (math.Vec3{X: -2, Y: 5, Z: 1}) || config.MaxExtents != (math.Vec3{X: -1, Y: 6, Z: 2}) {
		t.Errorf("extents = %v..%v", config.MinExtents, config.MaxExtents)
	}
	if config.Center != (math.Vec3{X: -1.5, Y: 5.5, Z: 1.5}) {
		t.Errorf("center = %v", config.Center)
	}
	for i, v := range config.Vertices {
		if !v.Normal.Compare(v.Normal.Normalized(), 1e-6) || v.Normal.LengthSquared() == 0 {
			t.Errorf("vertex %d has non-unit normal %v", i, v.Normal)
		}
		outward := v.Position.Sub(config.Center)
		if v.Normal.Dot(outward) <= 0 {
			t.Errorf("vertex %d normal %v points inward", i, v.Normal)
		}
	}

	other := gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), origin, "", "", math.NormalPolicyFlat)
	if other.Name == config.Name {
		t.Error("generated names should be unique")
	}
}

func TestGenerateCubeConfigSmoothWeld(t *testing.T) {
	gs := newTestGeometrySystem(t, 1)
	config := gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), math.IVec3{}, "welded", "stone", math.NormalPolicySmooth)
	gs.WeldConfig(config, math.NormalPolicySmooth)
	if config.VertexCount != 8 || len(config.Vertices) != 8 {
		t.Fatalf("welded smooth cube should have 8 vertices, got %d", len(config.Vertices))
	}
	if len(config.Indices) != voxel.IndexCount {
		t.Fatalf("welding must not drop triangles, got %d indices", len(config.Indices))
	}
	for _, idx := range config.Indices {
		if idx >= config.VertexCount {
			t.Fatalf("index %d out of range after weld", idx)
		}
	}
	for i, v := range config.Vertices {
		// every component of the corner normal leans away from the center
		out := v.Position.Sub(config.Center)
		if v.Normal.X*out.X <= 0 || v.Normal.Y*out.Y <= 0 || v.Normal.Z*out.Z <= 0 {
			t.Errorf("corner %d normal %v does not point outward", i, v.Normal)
		}
		if l := v.Normal.Length(); l < 0.999 || l > 1.001 {
			t.Errorf("corner %d normal length %v", i, l)
		}
	}
	if _, err := gs.AcquireFromConfig(config, false); err != nil {
		t.Fatalf("welded config should be accepted: %v", err)
	}
}

func TestGenerateCubeConfigFlatWeldKeepsFaces(t *testing.T) {
	gs := newTestGeometrySystem(t, 1)
	config := gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), math.IVec3{}, "flat", "", math.NormalPolicyFlat)
	gs.WeldConfig(config, math.NormalPolicyFlat)
	if len(config.Vertices) != voxel.VertexCount {
		t.Errorf("flat normals differ across faces, welding should keep 24 vertices, got %d", len(config.Vertices))
	}
}

func TestAcquireAndRelease(t *testing.T) {
	gs := newTestGeometrySystem(t, 2)
	builder := voxel.NewCubeMeshBuilder()

	a, err := gs.AcquireFromConfig(gs.GenerateCubeConfig(builder, math.IVec3{}, "a", "", math.NormalPolicyFlat), true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := gs.AcquireFromConfig(gs.GenerateCubeConfig(builder, math.IVec3{X: 1}, "b", "", math.NormalPolicyFlat), false)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != 0 || b.ID != 1 {
		t.Errorf("ids = %d, %d", a.ID, b.ID)
	}
	if a.Generation != 0 || b.Generation != 0 {
		t.Errorf("fresh slots should start at generation 0, got %d, %d", a.Generation, b.Generation)
	}
	if a.InternalID == b.InternalID {
		t.Error("internal ids should differ")
	}
	if a.Vertices[0] == b.Vertices[0] {
		t.Error("geometries should own separate vertex data")
	}

	_, err = gs.AcquireFromConfig(gs.GenerateCubeConfig(builder, math.IVec3{X: 2}, "c", "", math.NormalPolicyFlat), true)
	if !errors.Is(err, core.ErrRegistryFull) {
		t.Errorf("third acquire: got %v, want ErrRegistryFull", err)
	}

	again, err := gs.AcquireByID(a.ID)
	if err != nil || again != a {
		t.Fatalf("AcquireByID: %v", err)
	}
	gs.Release(a)
	if gs.Count() != 2 {
		t.Fatalf("a still referenced once, count = %d", gs.Count())
	}
	gs.Release(a)
	if gs.Count() != 1 {
		t.Fatalf("auto-released a should free its slot, count = %d", gs.Count())
	}
	if a.ID != metadata.InvalidID {
		t.Error("released geometry should be invalidated")
	}

	gs.Release(b)
	if gs.Count() != 1 {
		t.Error("b is not auto-release and must stay registered")
	}

	if _, err := gs.AcquireByID(0); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("slot 0 is free, got %v", err)
	}
	if _, err := gs.AcquireByID(metadata.InvalidID); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("invalid id, got %v", err)
	}

	c, err := gs.AcquireFromConfig(gs.GenerateCubeConfig(builder, math.IVec3{X: 2}, "c", "", math.NormalPolicyFlat), true)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != 0 {
		t.Errorf("freed slot should be reused, got id %d", c.ID)
	}
	if c.Generation != 1 {
		t.Errorf("reused slot should advance its generation, got %d", c.Generation)
	}
	gs.Release(c)
	d, err := gs.AcquireFromConfig(gs.GenerateCubeConfig(builder, math.IVec3{X: 3}, "d", "", math.NormalPolicyFlat), true)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != 0 || d.Generation != 2 {
		t.Errorf("second reuse: id %d generation %d, want 0 and 2", d.ID, d.Generation)
	}

	if err := gs.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if gs.Count() != 0 {
		t.Errorf("shutdown should clear the registry, count = %d", gs.Count())
	}
}

func TestAcquireRejectsMalformedConfig(t *testing.T) {
	gs := newTestGeometrySystem(t, 1)
	config := &metadata.GeometryConfig{
		Name:        "broken",
		VertexCount: 3,
		Vertices:    make([]math.Vertex3D, 3),
		IndexCount:  3,
		Indices:     []uint32{0, 1, 7},
	}
	if _, err := gs.AcquireFromConfig(config, true); err == nil {
		t.Fatal("expected error for out of range index")
	}
	if gs.Count() != 0 {
		t.Error("failed acquire must not hold a slot")
	}
	ok, err := gs.AcquireFromConfig(gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), math.IVec3{}, "ok", "", math.NormalPolicyFlat), true)
	if err != nil {
		t.Fatal(err)
	}
	if ok.ID != 0 || ok.Generation != 0 {
		t.Errorf("slot after failed acquire: id %d generation %d", ok.ID, ok.Generation)
	}
}

func TestConfigDispose(t *testing.T) {
	gs := newTestGeometrySystem(t, 1)
	config := gs.GenerateCubeConfig(voxel.NewCubeMeshBuilder(), math.IVec3{}, "x", "", math.NormalPolicyFlat)
	gs.ConfigDispose(config)
	if config.Vertices != nil || config.Indices != nil || config.VertexCount != 0 || config.IndexCount != 0 {
		t.Error("dispose should clear buffers")
	}
}
