package engine

import (
	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-cubes/engine/systems"
)

// Game is the application hooked into the engine. SystemManager and Events
// are set by New.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Events            *core.EventSystem
	State             interface{}
	FnInitialize      Initialize
	FnOnMeshesReady   OnMeshesReady
	FnShutdown        Shutdown
}

type Initialize func() error

// OnMeshesReady receives every successfully built mesh of a scene build. The
// meshes stay valid until the next build or shutdown.
type OnMeshesReady func(meshes []*metadata.Mesh) error
type Shutdown func() error
