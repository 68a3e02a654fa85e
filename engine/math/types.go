package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// IVec3 represents a 3D point with integer coordinates, typically the
// origin of a unit cube on the voxel grid.
type IVec3 struct {
	X, Y, Z int
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

/**
 * @brief Represents a single vertex in 3D space.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position Vec3
	/** @brief The normal of the vertex. */
	Normal Vec3
}

/**
 * @brief Represents the transform of an object in the world.
 * Transforms can have a parent whose own position is then
 * taken into account when resolving the world position.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	Position Vec3
	/** @brief The scale in the world. */
	Scale Vec3
	/** @brief A pointer to a parent transform if one is assigned. Can also be nil. */
	Parent *Transform
}
