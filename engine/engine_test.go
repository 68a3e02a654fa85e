package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
)

const twoCubes = `
name = "test"

[[cube]]
name = "a"
position = [0.0, 0.0, 0.0]

[[cube]]
name = "b"
position = [2.5, -1.5, 0.0]
`

const threeCubes = twoCubes + `
[[cube]]
name = "c"
position = [4.0, 0.0, 0.0]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadApplicationConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cubes.toml")
	writeFile(t, path, `
name = "cfg"
log_level = "debug"
scene = "scenes/x.toml"
workers = 100000
normals = "smooth"
weld = true
`)
	config, err := LoadApplicationConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Name != "cfg" || config.Scene != "scenes/x.toml" || !config.Weld || config.Watch {
		t.Errorf("unexpected config %+v", config)
	}
	if config.Output != defaultOutputFile || config.MaxGeometryCount != defaultMaxGeometryCount {
		t.Errorf("defaults not kept: %+v", config)
	}
	if config.Workers < 1 || config.Workers >= 100000 {
		t.Errorf("workers should be clamped, got %d", config.Workers)
	}
	if level, _ := config.Level(); level != core.DebugLevel {
		t.Errorf("level = %v", level)
	}
}

func TestLoadApplicationConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad level":   `log_level = "loud"`,
		"bad normals": `normals = "phong"`,
		"unknown key": `window_width = 1280`,
		"empty scene": `scene = ""`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".toml")
			writeFile(t, path, content)
			if _, err := LoadApplicationConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := LoadApplicationConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if config, err := LoadApplicationConfig(""); err != nil || config.Scene != defaultSceneFile {
		t.Errorf("empty path should give defaults: %v", err)
	}
}

func newTestGame(t *testing.T, dir string, watch bool) (*Game, chan []*metadata.Mesh) {
	t.Helper()
	ready := make(chan []*metadata.Mesh, 4)
	config := DefaultApplicationConfig()
	config.LogLevel = "error"
	config.Scene = filepath.Join(dir, "scenes", "test.toml")
	config.Output = filepath.Join(dir, "out", "test.obj")
	config.Workers = 2
	config.MaxGeometryCount = 8
	config.Watch = watch
	return &Game{
		ApplicationConfig: config,
		FnOnMeshesReady: func(meshes []*metadata.Mesh) error {
			ready <- meshes
			return nil
		},
	}, ready
}

func TestEngineRunOnce(t *testing.T) {
	dir := t.TempDir()
	g, ready := newTestGame(t, dir, false)
	writeFile(t, g.ApplicationConfig.Scene, twoCubes)

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if g.SystemManager == nil || g.Events == nil {
		t.Fatal("New should hand the systems to the game")
	}

	var built *core.BuildEvent
	e.Events().Register(core.EVENT_CODE_MESHES_BUILT, t, func(ctx core.EventContext) bool {
		built = ctx.Data.(*core.BuildEvent)
		return false
	})

	if err := e.Run(); !errors.Is(err, core.ErrEngineNotReady) {
		t.Errorf("Run before Initialize: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err != nil {
		t.Fatal(err)
	}

	meshes := <-ready
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes", len(meshes))
	}
	if got := meshes[1].Geometries[0].Extents.Min; got.X != 2 || got.Y != -1 {
		t.Errorf("cube b should sit in cell [2 -1 0], got %v", got)
	}
	if built == nil || built.Cubes != 2 || built.Failures != 0 {
		t.Errorf("build event = %+v", built)
	}
	if builds, cubes, _ := e.Metrics().Snapshot(); builds != 1 || cubes != 2 {
		t.Errorf("metrics = %d builds, %d cubes", builds, cubes)
	}

	data, err := os.ReadFile(g.ApplicationConfig.Output)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\nf "); n != 24 {
		t.Errorf("obj has %d faces", n)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if g.SystemManager.GeometrySystem.Count() != 0 {
		t.Error("shutdown should release every geometry")
	}
	if err := e.Shutdown(); !errors.Is(err, core.ErrAlreadyShutdown) {
		t.Errorf("second shutdown: %v", err)
	}
}

func TestEngineRunMissingScene(t *testing.T) {
	g, _ := newTestGame(t, t.TempDir(), false)
	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err == nil {
		t.Error("expected error for missing scene")
	}
}

func TestEngineWatchRebuilds(t *testing.T) {
	dir := t.TempDir()
	g, ready := newTestGame(t, dir, true)
	writeFile(t, g.ApplicationConfig.Scene, twoCubes)

	e, err := New(g)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- e.Run() }()

	wait := func(want int) {
		t.Helper()
		select {
		case meshes := <-ready:
			if len(meshes) != want {
				t.Fatalf("got %d meshes, want %d", len(meshes), want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no build with %d meshes", want)
		}
	}
	wait(2)

	writeFile(t, g.ApplicationConfig.Scene, threeCubes)
	wait(3)
	if n := g.SystemManager.GeometrySystem.Count(); n != 3 {
		t.Errorf("previous build should be released, %d geometries registered", n)
	}

	e.Events().Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after quit")
	}
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
}
