package apngdec

// ColorType is the type of color of the image, as per the PNG spec.
type ColorType uint8

const (
	ColorLuminance      ColorType = 0
	ColorRGB            ColorType = 2
	ColorIndexed        ColorType = 3
	ColorLuminanceAlpha ColorType = 4
	ColorRGBA           ColorType = 6
)

// Format is the combination of color type and bit depth of the decoded
// pixels.
type Format int

const (
	FormatInvalid Format = iota
	FormatIndexed1
	FormatIndexed2
	FormatIndexed4
	FormatIndexed8
	FormatRGB8
	FormatRGB16
	FormatRGBA8
	FormatRGBA16
	FormatLuminance1
	FormatLuminance2
	FormatLuminance4
	FormatLuminance8
	FormatLuminanceAlpha1
	FormatLuminanceAlpha2
	FormatLuminanceAlpha4
	FormatLuminanceAlpha8
)

var formatNames = [...]string{
	FormatInvalid:         "invalid",
	FormatIndexed1:        "indexed1",
	FormatIndexed2:        "indexed2",
	FormatIndexed4:        "indexed4",
	FormatIndexed8:        "indexed8",
	FormatRGB8:            "rgb8",
	FormatRGB16:           "rgb16",
	FormatRGBA8:           "rgba8",
	FormatRGBA16:          "rgba16",
	FormatLuminance1:      "luminance1",
	FormatLuminance2:      "luminance2",
	FormatLuminance4:      "luminance4",
	FormatLuminance8:      "luminance8",
	FormatLuminanceAlpha1: "luminance_alpha1",
	FormatLuminanceAlpha2: "luminance_alpha2",
	FormatLuminanceAlpha4: "luminance_alpha4",
	FormatLuminanceAlpha8: "luminance_alpha8",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "invalid"
	}
	return formatNames[f]
}

type formatKey struct {
	color ColorType
	depth uint8
}

// Supported color type and bit depth pairs. Anything missing is rejected.
var formatTable = map[formatKey]Format{
	{ColorIndexed, 1}:        FormatIndexed1,
	{ColorIndexed, 2}:        FormatIndexed2,
	{ColorIndexed, 4}:        FormatIndexed4,
	{ColorIndexed, 8}:        FormatIndexed8,
	{ColorLuminance, 1}:      FormatLuminance1,
	{ColorLuminance, 2}:      FormatLuminance2,
	{ColorLuminance, 4}:      FormatLuminance4,
	{ColorLuminance, 8}:      FormatLuminance8,
	{ColorRGB, 8}:            FormatRGB8,
	{ColorRGB, 16}:           FormatRGB16,
	{ColorLuminanceAlpha, 1}: FormatLuminanceAlpha1,
	{ColorLuminanceAlpha, 2}: FormatLuminanceAlpha2,
	{ColorLuminanceAlpha, 4}: FormatLuminanceAlpha4,
	{ColorLuminanceAlpha, 8}: FormatLuminanceAlpha8,
	{ColorRGBA, 8}:           FormatRGBA8,
	{ColorRGBA, 16}:          FormatRGBA16,
}

func determineFormat(ct ColorType, depth uint8) Format {
	if f, ok := formatTable[formatKey{ct, depth}]; ok {
		return f
	}
	return FormatInvalid
}

// components is the number of samples per pixel.
func (ct ColorType) components() int {
	switch ct {
	case ColorIndexed, ColorLuminance:
		return 1
	case ColorRGB:
		return 3
	case ColorLuminanceAlpha:
		return 2
	case ColorRGBA:
		return 4
	}
	return 0
}
