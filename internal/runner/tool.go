package runner

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/watermelon1024/video-downloader-bot/internal/jobopts"
)

var (
	destinationRe = regexp.MustCompile(`^\[\w+\] Destination: (.+)$`)
	mergerRe      = regexp.MustCompile(`^\[Merger\] Merging formats into "(.+)"$`)
	alreadyRe     = regexp.MustCompile(`^\[download\] (.+) has already been downloaded$`)
)

// jobState is owned by a single job; progress lines arrive synchronously
// from the tool's output scanner and only ever touch this struct.
type jobState struct {
	// FinalPath is the output file reported by the most recent stage. Each
	// post-processing stage supersedes the previous path — the last one wins.
	FinalPath string
	LastError string
}

func (st *jobState) Observe(line string) {
	if m := destinationRe.FindStringSubmatch(line); m != nil {
		st.FinalPath = m[1]
		return
	}
	if m := mergerRe.FindStringSubmatch(line); m != nil {
		st.FinalPath = m[1]
		return
	}
	if m := alreadyRe.FindStringSubmatch(line); m != nil {
		st.FinalPath = m[1]
		return
	}
	if strings.HasPrefix(line, "ERROR:") {
		st.LastError = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
	}
}

type invokeFunc func(ctx context.Context, binary string, args []string, st *jobState) error

// invokeTool executes yt-dlp and feeds its output lines into the job state.
func invokeTool(ctx context.Context, binary string, args []string, st *jobState) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug().Str("ytdlp", line).Msg("tool output")
		st.Observe(line)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s exited: %w", binary, err)
	}
	return nil
}

// buildArgs renders a JobConfig as a yt-dlp argument list.
func buildArgs(cfg jobopts.JobConfig, opts Options) []string {
	args := []string{"--newline", "--progress"}
	if opts.Debug {
		args = append(args, "--verbose")
	} else {
		args = append(args, "--no-warnings")
	}

	args = append(args, "-o", cfg.OutputTemplate)
	if opts.CacheDir != "" {
		args = append(args, "--cache-dir", opts.CacheDir)
	}
	if opts.FFmpegPath != "" {
		args = append(args, "--ffmpeg-location", opts.FFmpegPath)
	}
	if cfg.FormatSelector != "" {
		args = append(args, "-f", cfg.FormatSelector)
	}

	for _, step := range cfg.Steps {
		switch step.Kind {
		case jobopts.StepVideoConvert:
			if step.TargetFormat != "" {
				args = append(args, "--recode-video", step.TargetFormat)
			}
			if len(step.ExtraArgs) > 0 {
				args = append(args, "--postprocessor-args", "VideoConvertor:"+strings.Join(step.ExtraArgs, " "))
			}
		case jobopts.StepAudioExtract:
			args = append(args, "-x")
			if step.TargetFormat != "" {
				args = append(args, "--audio-format", step.TargetFormat)
			}
			if step.TargetQuality != "" {
				args = append(args, "--audio-quality", step.TargetQuality)
			}
			if len(step.ExtraArgs) > 0 {
				args = append(args, "--postprocessor-args", "ExtractAudio:"+strings.Join(step.ExtraArgs, " "))
			}
		}
	}

	return append(args, cfg.SourceURL)
}
