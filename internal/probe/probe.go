// Package probe inspects media files with ffprobe. Used best-effort: callers
// treat any failure here as "bitrate unknown", never as a job failure.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type Inspector struct {
	binary string
}

func New(binary string) *Inspector {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Inspector{binary: binary}
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

type ffprobeFormat struct {
	BitRate string `json:"bit_rate"`
}

// Bitrate returns the overall container bitrate of path in bits per second.
func (p *Inspector) Bitrate(ctx context.Context, path string) (uint64, error) {
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_format",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	return parseBitrate(output)
}

func parseBitrate(output []byte) (uint64, error) {
	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if ff.Format.BitRate == "" {
		return 0, fmt.Errorf("ffprobe output has no bit_rate")
	}
	rate, err := strconv.ParseUint(ff.Format.BitRate, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bit_rate %q: %w", ff.Format.BitRate, err)
	}
	return rate, nil
}
