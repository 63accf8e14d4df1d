// Package jobopts translates user-supplied download parameters into a
// normalized, immutable job configuration.
package jobopts

import "strings"

type StepKind string

const (
	StepVideoConvert StepKind = "video_convert"
	StepAudioExtract StepKind = "audio_extract"
)

const (
	// Format selector used when only the audio track is wanted.
	audioOnlySelector = "bestaudio/best"

	defaultAudioFormat  = "mp3"
	defaultAudioQuality = "192"
)

// PostProcessStep is one transformation applied to the downloaded file.
// Steps run in order; later steps operate on the output of earlier ones.
type PostProcessStep struct {
	Kind          StepKind
	TargetFormat  string
	TargetQuality string
	ExtraArgs     []string
}

// Params are the raw, optional user inputs. Unrecognized or empty values are
// simply omitted from the resulting config; building never fails.
type Params struct {
	VideoFormat  string
	VideoQuality string
	AudioFormat  string
	AudioQuality string
	AudioOnly    bool
	Other        string
}

// JobConfig is the normalized configuration for a single download job.
// Immutable once built.
type JobConfig struct {
	SourceURL      string
	OutputTemplate string
	FormatSelector string
	AudioOnly      bool
	Steps          []PostProcessStep
}

// Build assembles a JobConfig from user parameters. Pure, no I/O.
//
// Order matters: video overrides first, then audio overrides, and finally the
// audio-only switch which discards everything assembled so far and replaces
// it with the canonical single-step audio extraction policy.
func Build(url, outputTemplate string, p Params) JobConfig {
	cfg := JobConfig{
		SourceURL:      url,
		OutputTemplate: outputTemplate,
	}

	if p.VideoFormat != "" || p.VideoQuality != "" {
		step := PostProcessStep{Kind: StepVideoConvert}
		if p.VideoFormat != "" {
			step.TargetFormat = p.VideoFormat
		}
		if p.VideoQuality != "" {
			step.ExtraArgs = []string{"-b:v", stripUnit(p.VideoQuality) + "k"}
		}
		cfg.Steps = append(cfg.Steps, step)
	}

	if p.AudioFormat != "" || p.AudioQuality != "" {
		step := PostProcessStep{Kind: StepAudioExtract}
		if p.AudioFormat != "" {
			step.TargetFormat = p.AudioFormat
		}
		if p.AudioQuality != "" {
			step.TargetQuality = stripUnit(p.AudioQuality)
		}
		cfg.Steps = append(cfg.Steps, step)
	}

	if p.AudioOnly {
		// Full policy replacement, not an additive modifier: any video
		// overrides above are discarded.
		format := p.AudioFormat
		if format == "" {
			format = defaultAudioFormat
		}
		quality := p.AudioQuality
		if quality == "" {
			quality = defaultAudioQuality
		}
		return JobConfig{
			SourceURL:      url,
			OutputTemplate: outputTemplate,
			FormatSelector: audioOnlySelector,
			AudioOnly:      true,
			Steps: []PostProcessStep{{
				Kind:          StepAudioExtract,
				TargetFormat:  format,
				TargetQuality: stripUnit(quality),
			}},
		}
	}

	return cfg
}

// stripUnit drops a trailing "k" unit suffix from a quality value, leaving
// the digits ("192k" -> "192").
func stripUnit(v string) string {
	return strings.TrimSuffix(v, "k")
}
