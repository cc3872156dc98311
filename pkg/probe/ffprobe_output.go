package probe

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
	Error   ffprobeError    `json:"error"`
}

type ffprobeStream struct {
	CodecType string      `json:"codec_type"`
	Channels  int         `json:"channels"`
	Tags      ffprobeTags `json:"tags"`
}

type ffprobeTags struct {
	Language string `json:"language"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeError struct {
	Code    int    `json:"code"`
	Message string `json:"string"`
}
