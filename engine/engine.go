package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spaghettifunk/anima-cubes/engine/assets"
	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/export"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-cubes/engine/scene"
	"github.com/spaghettifunk/anima-cubes/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	mu           sync.Mutex
	currentStage Stage
	gameInstance *Game

	systemManager *systems.SystemManager
	events        *core.EventSystem
	watcher       *assets.AssetWatcher
	clock         *core.Clock
	metrics       *core.Metrics

	scenePath string
	meshes    []*metadata.Mesh

	quit         chan struct{}
	quitOnce     sync.Once
	runDone      chan struct{}
	shutdownOnce sync.Once
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("func New requires a game with an application config: %w", core.ErrNotInitialized)
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	level, _ := config.Level()
	core.SetLogLevel(level)
	policy, _ := config.NormalPolicy()

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Workers:          config.Workers,
		QueueSize:        config.Workers * 2,
		MaxGeometryCount: config.MaxGeometryCount,
		NormalPolicy:     policy,
		Weld:             config.Weld,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	scenePath, err := filepath.Abs(config.Scene)
	if err != nil {
		_ = sm.Shutdown()
		return nil, err
	}

	events := core.NewEventSystem()
	g.SystemManager = sm
	g.Events = events

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		systemManager: sm,
		events:        events,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		scenePath:     scenePath,
		quit:          make(chan struct{}),
		runDone:       make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	e.mu.Lock()
	if e.currentStage != EngineStageUninitialized {
		e.mu.Unlock()
		return core.ErrEngineNotReady
	}
	e.currentStage = EngineStageInitializing
	e.mu.Unlock()

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_SCENE_CHANGED, e, e.onSceneChanged)

	if e.gameInstance.ApplicationConfig.Watch {
		w, err := assets.NewAssetWatcher(assets.DefaultDebounce, filepath.Ext(e.scenePath))
		if err != nil {
			return err
		}
		if err := w.Watch(filepath.Dir(e.scenePath)); err != nil {
			_ = w.Close()
			return err
		}
		e.watcher = w
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.currentStage = EngineStageInitialized
	e.mu.Unlock()

	core.LogInfo("%s initialized with %d workers", e.gameInstance.ApplicationConfig.Name, e.systemManager.JobSystem.Workers())
	return nil
}

// Run builds the scene once. In watch mode it keeps rebuilding on every
// change of the scene file until Shutdown is called.
func (e *Engine) Run() error {
	e.mu.Lock()
	if e.currentStage != EngineStageInitialized {
		e.mu.Unlock()
		return core.ErrEngineNotReady
	}
	e.currentStage = EngineStageRunning
	e.mu.Unlock()
	defer close(e.runDone)

	if err := e.build(); err != nil && e.watcher == nil {
		return err
	}
	if e.watcher == nil {
		return nil
	}

	changes := e.watcher.Changes()
	for {
		select {
		case <-e.quit:
			return nil
		case info, ok := <-changes:
			if !ok {
				return nil
			}
			if filepath.Clean(info.Path) != e.scenePath {
				continue
			}
			e.events.Fire(core.EventContext{
				Type: core.EVENT_CODE_SCENE_CHANGED,
				Data: &core.SceneEvent{Path: info.Path},
			})
		}
	}
}

// build meshes the scene file and hands the result to the game.
func (e *Engine) build() error {
	e.clock.Start()

	s, err := scene.Load(e.scenePath)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	requests := make([]systems.CubeRequest, len(s.Cubes))
	for i, c := range s.Cubes {
		requests[i] = systems.CubeRequest{
			Name:         c.Name,
			MaterialName: c.Material,
			Transform:    c.Transform(),
		}
	}

	// Release the previous build so its slots can be reused.
	e.systemManager.MeshSystem.Unload(e.meshes)
	e.meshes = nil

	built, buildErr := e.systemManager.MeshSystem.Load(requests)
	meshes := make([]*metadata.Mesh, 0, len(built))
	for _, m := range built {
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	e.meshes = meshes
	failures := len(built) - len(meshes)

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed(), len(meshes), failures)
	e.clock.Stop()

	core.LogInfo("built %d/%d cubes of scene '%s' in %s (avg %s)", len(meshes), len(requests), s.Name, e.metrics.LastBuildTime(), e.metrics.AverageBuildTime())
	if buildErr != nil {
		core.LogWarn("%d cubes failed to build", failures)
	}

	e.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_MESHES_BUILT,
		Data: &core.BuildEvent{Cubes: len(meshes), Failures: failures},
	})

	var errs []error
	errs = append(errs, buildErr)
	if e.gameInstance.FnOnMeshesReady != nil {
		if err := e.gameInstance.FnOnMeshesReady(meshes); err != nil {
			core.LogError("game failed to handle meshes: %s", err.Error())
			errs = append(errs, err)
		}
	}
	if out := e.gameInstance.ApplicationConfig.Output; out != "" {
		if err := export.WriteOBJFile(out, meshes); err != nil {
			core.LogError(err.Error())
			errs = append(errs, err)
		} else {
			core.LogInfo("wrote %s", out)
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops a running engine, waits for Run to return and releases
// every system. Only the first call does anything.
func (e *Engine) Shutdown() error {
	err := core.ErrAlreadyShutdown
	e.shutdownOnce.Do(func() {
		e.requestQuit()

		e.mu.Lock()
		running := e.currentStage == EngineStageRunning
		e.currentStage = EngineStageShuttingDown
		e.mu.Unlock()
		if running {
			<-e.runDone
		}

		var errs []error
		if e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.gameInstance.FnShutdown())
		}
		if e.watcher != nil {
			errs = append(errs, e.watcher.Close())
		}
		e.systemManager.MeshSystem.Unload(e.meshes)
		e.meshes = nil
		errs = append(errs, e.systemManager.Shutdown(), e.events.Shutdown())
		err = errors.Join(errs...)
	})
	return err
}

// Events is the event bus of the engine.
func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) requestQuit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.requestQuit()
		return true
	}
	return false
}

func (e *Engine) onSceneChanged(context core.EventContext) bool {
	se, ok := context.Data.(*core.SceneEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	core.LogInfo("scene %s changed, rebuilding", se.Path)
	if err := e.build(); err != nil {
		core.LogError("rebuild failed: %s", err.Error())
	}
	return false
}
