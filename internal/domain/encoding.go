package domain

// EncodingConfig describes how a frame sequence is encoded into a video.
// Nil optional fields are left out of the command entirely.
type EncodingConfig struct {
	SourceFrameRate *int    `json:"source_frame_rate,omitempty"`
	OutputFrameRate int     `json:"output_frame_rate"`
	Encoding        string  `json:"encoding"`
	KeyInt          int     `json:"key_int"`
	MinKeyInt       int     `json:"min_key_int,omitempty"`
	GOPValue        *int    `json:"gop_value,omitempty"`
	VideoQuality    *int    `json:"video_quality,omitempty"`
	MaxRate         *int    `json:"max_rate,omitempty"`
	BufSize         *int    `json:"buf_size,omitempty"`
	PixelFormat     string  `json:"pixel_format,omitempty"`
	Preset          *string `json:"preset,omitempty"`
}

// Ptr returns a pointer to v, for filling optional EncodingConfig fields.
func Ptr[T any](v T) *T {
	return &v
}
