package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Raw binary data, such as SPIR-V bytecode. */
	ResourceTypeBinary ResourceType = iota
	/** @brief Compiled shader stage. */
	ResourceTypeShader
	/** @brief Triangle list model. */
	ResourceTypeModel
	ResourceTypeNone
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeModel:
		return "model"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath     string
	ResourceType ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/** @brief The triangle list produced by the model loader. */
type ModelData struct {
	Name     string
	Vertices []Vertex
}
