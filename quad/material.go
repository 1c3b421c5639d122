package quad

// Material identifies the variant of a draw quad.
type Material uint8

const (
	MaterialInvalid Material = iota
	MaterialDebugBorder
	MaterialSolidColor
	MaterialTexture
	MaterialTile
	MaterialRenderPass
	MaterialYUVVideo
	MaterialSurface
	MaterialStreamVideo
)

var materialNames = [...]string{
	MaterialInvalid:     "Invalid",
	MaterialDebugBorder: "DebugBorder",
	MaterialSolidColor:  "SolidColor",
	MaterialTexture:     "Texture",
	MaterialTile:        "Tile",
	MaterialRenderPass:  "RenderPass",
	MaterialYUVVideo:    "YUVVideo",
	MaterialSurface:     "Surface",
	MaterialStreamVideo: "StreamVideo",
}

// String returns the material name.
func (m Material) String() string {
	if int(m) < len(materialNames) {
		return materialNames[m]
	}
	return "Unknown"
}

// RenderPassID identifies a render pass within a frame. Zero is invalid.
type RenderPassID uint64

// ResourceID identifies an externally owned resource. Zero is invalid.
type ResourceID uint32

// IsValid reports whether id refers to a resource.
func (id ResourceID) IsValid() bool { return id != 0 }
