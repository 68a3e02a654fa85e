package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/math"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-cubes/engine/voxel"
)

// CubeRequest asks for one cube mesh at the grid cell of Transform.
type CubeRequest struct {
	Name         string
	MaterialName string
	Transform    *math.Transform
}

type MeshSystemConfig struct {
	NormalPolicy math.NormalPolicy
	// Weld merges identical vertices after normals are generated.
	Weld bool
}

// MeshSystem turns cube requests into registered meshes, one job per cube.
type MeshSystem struct {
	config         MeshSystemConfig
	geometrySystem *GeometrySystem
	jobSystem      *JobSystem
	nextID         uint32
	mu             sync.Mutex
}

func NewMeshSystem(config MeshSystemConfig, gs *GeometrySystem, js *JobSystem) (*MeshSystem, error) {
	if gs == nil || js == nil {
		return nil, fmt.Errorf("func NewMeshSystem requires geometry and job systems: %w", core.ErrNotInitialized)
	}
	return &MeshSystem{
		config:         config,
		geometrySystem: gs,
		jobSystem:      js,
	}, nil
}

// NewBuilderState is the per-worker state constructor for the job system
// used by MeshSystem: every worker owns one cube builder.
func NewBuilderState(worker int) interface{} {
	return voxel.NewCubeMeshBuilder()
}

func (ms *MeshSystem) Shutdown() error {
	return nil
}

type meshLoadParams struct {
	index   int
	request CubeRequest
}

// Load builds every request in parallel and returns the meshes in request
// order. A failed cube leaves a nil entry and contributes to the returned
// error; the other cubes are still returned.
func (ms *MeshSystem) Load(requests []CubeRequest) ([]*metadata.Mesh, error) {
	meshes := make([]*metadata.Mesh, len(requests))
	errs := make([]error, len(requests))

	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		err := ms.jobSystem.Submit(metadata.JobTask{
			OnStart: ms.meshLoadJobStart,
			OnComplete: func(result interface{}) {
				meshes[i] = result.(*metadata.Mesh)
			},
			OnFailure: func(err error) {
				errs[i] = err
			},
			OnCompletionCallback: wg.Done,
			InputParams:          &meshLoadParams{index: i, request: req},
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	return meshes, errors.Join(errs...)
}

// Unload releases the geometries of meshes.
func (ms *MeshSystem) Unload(meshes []*metadata.Mesh) {
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for _, g := range m.Geometries {
			ms.geometrySystem.Release(g)
		}
		m.Geometries = nil
		m.GeometryCount = 0
		m.Generation = metadata.InvalidIDUint8
	}
}

/**
 * @brief Called when a mesh loading job begins.
 *
 * @param worker The state of the worker running the job.
 * @param params Mesh loading parameters.
 * @return The loaded mesh or an error.
 */
func (ms *MeshSystem) meshLoadJobStart(worker *metadata.WorkerState, params interface{}) (interface{}, error) {
	loadParams, ok := params.(*meshLoadParams)
	if !ok {
		return nil, fmt.Errorf("failed to cast params to `*meshLoadParams`")
	}
	builder, ok := worker.Data.(*voxel.CubeMeshBuilder)
	if !ok {
		builder = voxel.NewCubeMeshBuilder()
	}

	req := loadParams.request
	transform := req.Transform
	if transform == nil {
		transform = math.TransformCreate()
	}
	origin := transform.Origin()

	config := ms.geometrySystem.GenerateCubeConfig(builder, origin, req.Name, req.MaterialName, ms.config.NormalPolicy)
	if ms.config.Weld {
		ms.geometrySystem.WeldConfig(config, ms.config.NormalPolicy)
	}

	g, err := ms.geometrySystem.AcquireFromConfig(config, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load cube #%d '%s': %w", loadParams.index, config.Name, err)
	}

	ms.mu.Lock()
	ms.nextID++
	id := ms.nextID
	ms.mu.Unlock()

	core.LogDebug("Successfully built cube '%s' at [%d, %d, %d] on worker %d.", config.Name, origin.X, origin.Y, origin.Z, worker.Index)

	return &metadata.Mesh{
		UniqueID:      id,
		Generation:    0,
		GeometryCount: 1,
		Geometries:    []*metadata.Geometry{g},
		Transform:     transform,
	}, nil
}
