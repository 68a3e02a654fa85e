package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-cubes/engine/core"
	"github.com/spaghettifunk/anima-cubes/engine/math"
	"github.com/spaghettifunk/anima-cubes/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-cubes/engine/voxel"
)

type GeometrySystemConfig struct {
	// Max number of geometries that can be registered at once.
	MaxGeometryCount uint32
}

// GeometrySystem stores generated geometries in a fixed number of
// reference-counted slots. All methods are safe for concurrent use.
type GeometrySystem struct {
	mu     sync.Mutex
	Config *GeometrySystemConfig
	// Array of registered geometries.
	RegisteredGeometries []*metadata.GeometryReference
	identifier           *core.Identifier
}

/**
 * @brief Initializes the geometry system.
 *
 * @param config The configuration for this system.
 * @return The system, or an error when the config is invalid.
 */
func NewGeometrySystem(config *GeometrySystemConfig) (*GeometrySystem, error) {
	if config == nil || config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogWarn(err.Error())
		return nil, err
	}

	gs := &GeometrySystem{
		Config:               config,
		RegisteredGeometries: make([]*metadata.GeometryReference, config.MaxGeometryCount),
		identifier:           core.NewIdentifier(int(config.MaxGeometryCount)),
	}

	// Invalidate all geometries in the array.
	for i := range gs.RegisteredGeometries {
		gs.RegisteredGeometries[i] = &metadata.GeometryReference{
			Geometry: invalidGeometry(),
		}
	}

	return gs, nil
}

func invalidGeometry() *metadata.Geometry {
	return &metadata.Geometry{
		ID:         metadata.InvalidID,
		InternalID: metadata.InvalidID,
		Generation: metadata.InvalidIDUint16,
	}
}

/**
 * @brief Shuts down the geometry system, destroying every registered geometry.
 */
func (gs *GeometrySystem) Shutdown() error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	for _, ref := range gs.RegisteredGeometries {
		if ref.Geometry.ID != metadata.InvalidID {
			gs.destroyGeometry(ref)
		}
	}
	return nil
}

/**
 * @brief Acquires an existing geometry by id.
 *
 * @param id The geometry identifier to acquire by.
 * @return The acquired geometry or an error if the id is invalid.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if id != metadata.InvalidID && id < gs.Config.MaxGeometryCount && gs.RegisteredGeometries[id].Geometry.ID != metadata.InvalidID {
		gs.RegisteredGeometries[id].ReferenceCount++
		return gs.RegisteredGeometries[id].Geometry, nil
	}

	err := fmt.Errorf("func AcquireByID cannot load invalid geometry id %d: %w", id, core.ErrInvalidID)
	core.LogError(err.Error())
	return nil, err
}

/**
 * @brief Registers and acquires a new geometry using the given config.
 *
 * @param config The geometry configuration.
 * @param autoRelease Indicates if the acquired geometry should be unloaded when its reference count reaches 0.
 * @return The acquired geometry or an error if no slot is free.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var ref *metadata.GeometryReference
	for i := uint32(0); i < gs.Config.MaxGeometryCount; i++ {
		if gs.RegisteredGeometries[i].Geometry.ID == metadata.InvalidID {
			// Found empty slot.
			ref = gs.RegisteredGeometries[i]
			ref.AutoRelease = autoRelease
			ref.ReferenceCount = 1
			ref.Geometry.ID = i
			break
		}
	}

	if ref == nil {
		err := fmt.Errorf("unable to obtain free slot for geometry '%s'. Adjust configuration to allow more space: %w", config.Name, core.ErrRegistryFull)
		core.LogError(err.Error())
		return nil, err
	}

	if err := gs.createGeometry(config, ref); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return ref.Geometry, nil
}

/**
 * @brief Frees resources held by the provided configuration.
 *
 * @param config A pointer to the configuration to be disposed.
 */
func (gs *GeometrySystem) ConfigDispose(config *metadata.GeometryConfig) {
	if len(config.Vertices) > 0 {
		config.Vertices = nil
	}
	if len(config.Indices) > 0 {
		config.Indices = nil
	}
	config.VertexCount = 0
	config.IndexCount = 0
}

/**
 * @brief Releases a reference to the provided geometry.
 *
 * @param geometry The geometry to be released.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if geometry != nil && geometry.ID != metadata.InvalidID && geometry.ID < gs.Config.MaxGeometryCount {
		ref := gs.RegisteredGeometries[geometry.ID]

		if ref.Geometry == geometry {
			if ref.ReferenceCount > 0 {
				ref.ReferenceCount--
			}

			// Also blanks out the geometry id.
			if ref.ReferenceCount < 1 && ref.AutoRelease {
				gs.destroyGeometry(ref)
			}
		} else {
			core.LogError("Geometry id mismatch. Check registration logic, as this should never occur.")
		}
		return
	}

	core.LogWarn("geometry system release cannot release invalid geometry id. Nothing was done.")
}

// Count returns the number of occupied slots.
func (gs *GeometrySystem) Count() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	n := 0
	for _, ref := range gs.RegisteredGeometries {
		if ref.Geometry.ID != metadata.InvalidID {
			n++
		}
	}
	return n
}

/**
 * @brief Generates configuration for a unit cube anchored at origin.
 * Vertices are not shared between faces; normals are rebuilt from the
 * triangle winding using the given policy.
 *
 * @param builder The cube builder to use. Must not be shared with other goroutines.
 * @param origin The integer grid cell of the cube.
 * @param name The name of the generated geometry. A unique name is generated when empty.
 * @param materialName The name of the material to be used.
 * @param policy How normals are recalculated.
 * @return A geometry configuration which can then be fed into AcquireFromConfig().
 */
func (gs *GeometrySystem) GenerateCubeConfig(builder *voxel.CubeMeshBuilder, origin math.IVec3, name, materialName string, policy math.NormalPolicy) *metadata.GeometryConfig {
	positions, indices := builder.Build(origin)

	config := &metadata.GeometryConfig{
		VertexCount: uint32(len(positions)),
		Vertices:    make([]math.Vertex3D, len(positions)),
		IndexCount:  uint32(len(indices)),
		Indices:     indices,
		Origin:      origin,
	}
	for i, p := range positions {
		config.Vertices[i].Position = p
	}

	math.GeometryRecalculateNormals(policy, config.Vertices, config.Indices)

	ext, center := math.GeometryExtents(config.Vertices)
	config.MinExtents = ext.Min
	config.MaxExtents = ext.Max
	config.Center = center

	if len(name) > 0 {
		config.Name = name
	} else {
		config.Name = fmt.Sprintf("cube-%s", uuid.New().String())
	}

	if len(materialName) > 0 {
		config.MaterialName = materialName
	} else {
		config.MaterialName = metadata.DefaultMaterialName
	}

	return config
}

// WeldConfig merges identical vertices of config in place. Smooth policies
// weld on position alone and regenerate normals across the shared corners,
// flat normals keep faces apart.
func (gs *GeometrySystem) WeldConfig(config *metadata.GeometryConfig, policy math.NormalPolicy) {
	if policy != math.NormalPolicyFlat {
		for i := range config.Vertices {
			config.Vertices[i].Normal = math.NewVec3Zero()
		}
	}
	config.Vertices = math.GeometryDeduplicateVertices(config.Vertices, config.Indices)
	config.VertexCount = uint32(len(config.Vertices))
	if policy != math.NormalPolicyFlat {
		math.GeometryRecalculateNormals(policy, config.Vertices, config.Indices)
	}
}

func (gs *GeometrySystem) createGeometry(config *metadata.GeometryConfig, ref *metadata.GeometryReference) error {
	geometry := ref.Geometry
	if len(config.Indices)%3 != 0 || uint32(len(config.Indices)) != config.IndexCount || uint32(len(config.Vertices)) != config.VertexCount {
		invalidateReference(ref)
		return fmt.Errorf("failed to create geometry '%s': malformed vertex/index data", config.Name)
	}
	for _, idx := range config.Indices {
		if idx >= config.VertexCount {
			invalidateReference(ref)
			return fmt.Errorf("failed to create geometry '%s': index %d out of range", config.Name, idx)
		}
	}

	geometry.InternalID = gs.identifier.AquireNewID(geometry)
	if geometry.Generation == metadata.InvalidIDUint16 {
		geometry.Generation = 0
	} else {
		geometry.Generation++
	}

	geometry.Vertices = config.Vertices
	geometry.Indices = config.Indices

	// Copy over extents, center, etc.
	geometry.Center = config.Center
	geometry.Extents.Min = config.MinExtents
	geometry.Extents.Max = config.MaxExtents
	geometry.Name = config.Name
	geometry.MaterialName = config.MaterialName

	return nil
}

func (gs *GeometrySystem) destroyGeometry(ref *metadata.GeometryReference) {
	geometry := ref.Geometry
	if geometry.InternalID != metadata.InvalidID {
		if err := gs.identifier.ReleaseID(geometry.InternalID); err != nil {
			core.LogWarn(err.Error())
		}
	}
	generation := geometry.Generation

	// Callers still holding the old pointer see an invalid geometry.
	geometry.InternalID = metadata.InvalidID
	geometry.Generation = metadata.InvalidIDUint16
	geometry.ID = metadata.InvalidID
	geometry.Name = ""
	geometry.MaterialName = ""
	geometry.Vertices = nil
	geometry.Indices = nil

	// The slot keeps its generation so a reused slot is told apart.
	ref.Geometry = invalidGeometry()
	ref.Geometry.Generation = generation
	ref.ReferenceCount = 0
	ref.AutoRelease = false
}

// Invalidate the entry.
func invalidateReference(ref *metadata.GeometryReference) {
	ref.ReferenceCount = 0
	ref.AutoRelease = false
	ref.Geometry.ID = metadata.InvalidID
	ref.Geometry.InternalID = metadata.InvalidID
}
