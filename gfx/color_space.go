package gfx

// ColorSpace identifies the color space of a render pass or video frame.
type ColorSpace uint8

const (
	ColorSpaceSRGB ColorSpace = iota
	ColorSpaceRec601
	ColorSpaceRec709
	ColorSpaceJPEG
	ColorSpaceDisplayP3
	ColorSpaceRec2020
	ColorSpaceSCRGBLinear
	ColorSpaceHDR10
)

var colorSpaceNames = [...]string{
	ColorSpaceSRGB:        "srgb",
	ColorSpaceRec601:      "rec601",
	ColorSpaceRec709:      "rec709",
	ColorSpaceJPEG:        "jpeg",
	ColorSpaceDisplayP3:   "display-p3",
	ColorSpaceRec2020:     "rec2020",
	ColorSpaceSCRGBLinear: "scrgb-linear",
	ColorSpaceHDR10:       "hdr10",
}

func (c ColorSpace) String() string {
	if int(c) < len(colorSpaceNames) {
		return colorSpaceNames[c]
	}
	return "unknown"
}

// IsHDR reports whether c has a high dynamic range transfer function.
func (c ColorSpace) IsHDR() bool {
	return c == ColorSpaceSCRGBLinear || c == ColorSpaceHDR10
}

// IsWideGamut reports whether c has primaries wider than sRGB. HDR spaces
// are wide gamut.
func (c ColorSpace) IsWideGamut() bool {
	switch c {
	case ColorSpaceDisplayP3, ColorSpaceRec2020, ColorSpaceSCRGBLinear, ColorSpaceHDR10:
		return true
	}
	return false
}

// YUVColorSpace selects the matrix used to convert YUV samples to RGB.
type YUVColorSpace uint8

const (
	// YUVRec601 is limited-range BT.601, the default for video.
	YUVRec601 YUVColorSpace = iota
	// YUVRec709 is limited-range BT.709.
	YUVRec709
	// YUVJPEG is full-range BT.601.
	YUVJPEG
)

func (y YUVColorSpace) String() string {
	switch y {
	case YUVRec601:
		return "rec601"
	case YUVRec709:
		return "rec709"
	case YUVJPEG:
		return "jpeg"
	}
	return "unknown"
}

// YUVMatrix returns the conversion matrix that c implies for video, or
// false when c carries no YUV matrix.
func (c ColorSpace) YUVMatrix() (YUVColorSpace, bool) {
	switch c {
	case ColorSpaceRec601:
		return YUVRec601, true
	case ColorSpaceRec709:
		return YUVRec709, true
	case ColorSpaceJPEG:
		return YUVJPEG, true
	}
	return YUVRec601, false
}
