package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compositor/gfx"
	"github.com/gogpu/compositor/resource"
)

//go:embed shaders/yuv.wgsl
var yuvShaderWGSL string

// YUVParamsSize is the size in bytes of the YUV shader's uniform block.
const YUVParamsSize = 16*4 + 4*4

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(src string) ([]uint32, error) {
	code, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	if len(code)%4 != 0 {
		return nil, fmt.Errorf("wgpu: compile shader: %d bytes is not whole words", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// PrecompileShaders compiles the YUV conversion shader and creates its
// module. It runs once; later calls return the first result.
func (r *Residency) PrecompileShaders() error {
	r.shaderOnce.Do(func() {
		words, err := CompileWGSL(yuvShaderWGSL)
		if err != nil {
			r.shaderErr = err
			return
		}
		r.shader, r.shaderErr = r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "yuv_to_rgb",
			Source: hal.ShaderSource{SPIRV: words},
		})
		if r.shaderErr == nil {
			r.log.Debug("wgpu: yuv shader ready", "words", len(words))
		}
	})
	return r.shaderErr
}

// YUVShader returns the YUV conversion shader module, compiling it on
// first use.
func (r *Residency) YUVShader() (hal.ShaderModule, error) {
	if err := r.PrecompileShaders(); err != nil {
		return nil, err
	}
	return r.shader, nil
}

// Destroy releases the shader module. Textures are released by their
// surfaces.
func (r *Residency) Destroy() {
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// EncodeYUVParams lays out the uniform block of the YUV shader: the
// column-major conversion matrix followed by the sample adjustment.
func EncodeYUVParams(cs gfx.YUVColorSpace, adj resource.SampleAdjust) ([]byte, error) {
	m, err := resource.YUVToRGBMatrix(cs)
	if err != nil {
		return nil, err
	}
	offset, mult := adj.Offset, adj.Multiplier
	if mult == 0 {
		offset, mult = 0, 1
	}
	buf := make([]byte, YUVParamsSize)
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math32.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[64:], math32.Float32bits(offset))
	binary.LittleEndian.PutUint32(buf[68:], math32.Float32bits(mult))
	return buf, nil
}
