package systems

import (
	"errors"

	"github.com/spaghettifunk/anima-cubes/engine/math"
)

type SystemManagerConfig struct {
	Workers          int
	QueueSize        int
	MaxGeometryCount uint32
	NormalPolicy     math.NormalPolicy
	Weld             bool
}

type SystemManager struct {
	GeometrySystem *GeometrySystem
	JobSystem      *JobSystem
	MeshSystem     *MeshSystem
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	js, err := NewJobSystem(config.Workers, config.QueueSize, NewBuilderState)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: config.MaxGeometryCount,
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	ms, err := NewMeshSystem(MeshSystemConfig{
		NormalPolicy: config.NormalPolicy,
		Weld:         config.Weld,
	}, gs, js)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		GeometrySystem: gs,
		JobSystem:      js,
		MeshSystem:     ms,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	return errors.Join(
		sm.MeshSystem.Shutdown(),
		sm.JobSystem.Shutdown(),
		sm.GeometrySystem.Shutdown(),
	)
}
