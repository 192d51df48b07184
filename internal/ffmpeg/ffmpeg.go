// Package ffmpeg locates the ffmpeg executable and builds the argument
// lists used to decode remote media into raw PCM for the voice transport.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
)

// envVars are consulted in order before falling back to PATH lookup.
var envVars = []string{"FFMPEG_EXECUTABLE", "FFMPEG_PATH", "FFMPEG"}

// Locate returns the path of the ffmpeg executable. Environment overrides
// win over PATH so containerised deployments can pin a specific build.
func Locate() (string, error) {
	for _, v := range envVars {
		if p := os.Getenv(v); p != "" {
			return p, nil
		}
	}
	p, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("ffmpeg: executable not found on PATH (set %s to override): %w", envVars[0], err)
	}
	return p, nil
}

// DecodeArgs builds the argument list that decodes inputURL to signed
// 16-bit little-endian stereo PCM at 48 kHz on stdout. The reconnect flags
// let ffmpeg ride out transient CDN stalls on HTTP streams.
func DecodeArgs(inputURL string) []string {
	return []string{
		"-nostdin",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", inputURL,
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"-vn",
		"-loglevel", "warning",
		"pipe:1",
	}
}
