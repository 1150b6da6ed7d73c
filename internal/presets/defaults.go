package presets

var builtinPresets = []Preset{
	{
		Name:        "default",
		Description: "Balanced H.264 encode suitable for most clips.",
		VideoCodec:  "libx264",
		CRF:         23,
		Preset:      "medium",
	},
	{
		Name:        "fast",
		Description: "Quick H.264 encode with larger output.",
		VideoCodec:  "libx264",
		CRF:         26,
		Preset:      "veryfast",
	},
	{
		Name:        "high-quality",
		Description: "Slow H.264 encode that keeps more detail.",
		VideoCodec:  "libx264",
		CRF:         18,
		Preset:      "slow",
	},
	{
		Name:        "small-size",
		Description: "H.265 encode for the smallest files; slower to play back on old devices.",
		VideoCodec:  "libx265",
		CRF:         28,
		Preset:      "medium",
	},
}

// Defaults returns a copy of the presets shipped with the application.
func Defaults() []Preset {
	out := make([]Preset, len(builtinPresets))
	copy(out, builtinPresets)
	return out
}
