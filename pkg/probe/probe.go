package probe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	audioCodecType = "audio"
	videoCodecType = "video"

	ffprobeName    = "ffprobe"
	hideBannerArg  = "-hide_banner"
	logLevelArg    = "-loglevel"
	quietLogLevel  = "quiet"
	showErrorArg   = "-show_error"
	showFormatArg  = "-show_format"
	showStreamsArg = "-show_streams"
	outputArg      = "-of"
	jsonOutput     = "json"
)

// AudioStream specifies information about audio included in the media file.
type AudioStream struct {
	Language string
	Channels int
}

// Result contains information about the probed media file.
type Result struct {
	Path            string
	DurationSeconds float64
	AudioStreams    []AudioStream
	HasVideo        bool
	err             error
}

// IsMediaFile informs whether probing found a decodable media file with at least
// one audio stream under the path.
func (r Result) IsMediaFile() bool {
	return r.err == nil && len(r.AudioStreams) > 0
}

// Err returns the error encountered during probing, if any.
func (r Result) Err() error {
	return r.err
}

// File runs ffprobe on the provided path, returning duration and stream
// information of the media file.
func File(path string) (Result, error) {
	result := Result{Path: path}

	cmd := exec.Command(
		ffprobeName,
		hideBannerArg,
		logLevelArg, quietLogLevel,
		showErrorArg,
		showFormatArg,
		showStreamsArg,
		outputArg, jsonOutput,
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		result.err = fmt.Errorf("could not execute ffprobe on file '%s': %w", path, err)

		return result, result.err
	}

	var probeOutput ffprobeOutput
	err = json.Unmarshal(output, &probeOutput)
	if err != nil {
		result.err = fmt.Errorf("could not unmarshal ffprobe output for file '%s': %w", path, err)

		return result, result.err
	}

	if probeOutput.Error.Message != "" {
		result.err = fmt.Errorf("ffprobe reported an error for file '%s': %s", path, probeOutput.Error.Message)

		return result, result.err
	}

	duration, err := strconv.ParseFloat(probeOutput.Format.Duration, 64)
	if err != nil {
		result.err = fmt.Errorf("could not parse duration '%s' of file '%s': %w", probeOutput.Format.Duration, path, err)

		return result, result.err
	}

	result.DurationSeconds = duration
	for _, stream := range probeOutput.Streams {
		switch stream.CodecType {
		case audioCodecType:
			result.AudioStreams = append(result.AudioStreams, AudioStream{
				Language: stream.Tags.Language,
				Channels: stream.Channels,
			})
		case videoCodecType:
			result.HasVideo = true
		}
	}

	return result, nil
}
