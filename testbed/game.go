package testbed

import (
	"fmt"

	"github.com/spaghettifunk/anima-cubes/engine"
	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/math"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
)

type gameState struct {
	builds    int
	lastCubes int
	bounds    math.Extents3D
}

// NewPlayground returns a game that logs a summary of every scene build.
func NewPlayground(config *engine.ApplicationConfig) *engine.Game {
	g := &engine.Game{
		ApplicationConfig: config,
		State:             &gameState{},
	}
	g.FnInitialize = func() error { return initialize(g) }
	g.FnOnMeshesReady = func(meshes []*metadata.Mesh) error { return onMeshesReady(g, meshes) }
	g.FnShutdown = func() error { return shutdown(g) }
	return g
}

func initialize(g *engine.Game) error {
	core.LogDebug("Playground Initialize fn....")

	if g.SystemManager == nil || g.Events == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}

	g.Events.Register(core.EVENT_CODE_MESHES_BUILT, g, func(context core.EventContext) bool {
		be, ok := context.Data.(*core.BuildEvent)
		if !ok {
			core.LogError("wrong event associated with the event type `%d`", context.Type)
			return false
		}
		if be.Failures > 0 {
			core.LogWarn("%d cubes were dropped from the last build", be.Failures)
		}
		return false
	})
	return nil
}

func onMeshesReady(g *engine.Game, meshes []*metadata.Mesh) error {
	state := g.State.(*gameState)
	state.builds++
	state.lastCubes = len(meshes)
	state.bounds = math.Extents3D{}

	vertices, triangles := 0, 0
	first := true
	for _, m := range meshes {
		vertices += m.VertexCount()
		triangles += m.TriangleCount()
		for _, geom := range m.Geometries {
			if first {
				state.bounds = geom.Extents
				first = false
				continue
			}
			state.bounds.Min = math.NewVec3(min(state.bounds.Min.X, geom.Extents.Min.X), min(state.bounds.Min.Y, geom.Extents.Min.Y), min(state.bounds.Min.Z, geom.Extents.Min.Z))
			state.bounds.Max = math.NewVec3(max(state.bounds.Max.X, geom.Extents.Max.X), max(state.bounds.Max.Y, geom.Extents.Max.Y), max(state.bounds.Max.Z, geom.Extents.Max.Z))
		}
		core.LogDebug("mesh %d: %d geometries, %d vertices, %d triangles", m.UniqueID, len(m.Geometries), m.VertexCount(), m.TriangleCount())
	}

	core.LogInfo("build #%d: %d cubes, %d vertices, %d triangles, bounds [%.1f %.1f %.1f]..[%.1f %.1f %.1f]",
		state.builds, len(meshes), vertices, triangles,
		state.bounds.Min.X, state.bounds.Min.Y, state.bounds.Min.Z,
		state.bounds.Max.X, state.bounds.Max.Y, state.bounds.Max.Z)
	return nil
}

func shutdown(g *engine.Game) error {
	state := g.State.(*gameState)
	core.LogInfo("playground shut down after %d builds", state.builds)
	if g.Events != nil {
		g.Events.Unregister(core.EVENT_CODE_MESHES_BUILT, g)
	}
	return nil
}
