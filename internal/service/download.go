// Package service orchestrates one download request end to end: acknowledge,
// build options, run the job, render the outcome, notify the requester.
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/watermelon1024/video-downloader-bot/internal/event"
	"github.com/watermelon1024/video-downloader-bot/internal/jobopts"
	"github.com/watermelon1024/video-downloader-bot/internal/notify"
	"github.com/watermelon1024/video-downloader-bot/internal/runner"
)

// Request carries the user-supplied download parameters from the dispatch
// layer. Empty overrides are simply not applied.
type Request struct {
	URL          string
	VideoFormat  string
	VideoQuality string
	AudioFormat  string
	AudioQuality string
	AudioOnly    bool
	Other        string
}

// Reply is the opaque reply channel provided by the dispatch layer.
type Reply interface {
	// Ack confirms the request was received and work has started.
	Ack(ctx context.Context, text string) error
	// Edit replaces the acknowledgement with the final content or attachment.
	Edit(ctx context.Context, msg notify.Message) error
}

// JobRunner executes one job and hands its terminal result to deliver while
// the output file is still on disk.
type JobRunner interface {
	Run(ctx context.Context, cfg jobopts.JobConfig, deliver func(runner.Result)) error
}

type DownloadService struct {
	runner    JobRunner
	bus       event.Bus
	outputDir string
}

func New(r JobRunner, bus event.Bus, outputDir string) *DownloadService {
	return &DownloadService{
		runner:    r,
		bus:       bus,
		outputDir: outputDir,
	}
}

// Handle processes one download request. The returned error is reserved for
// unrecoverable problems (failure details could not be persisted); everything
// else is reported to the requester through reply.
func (s *DownloadService) Handle(ctx context.Context, req Request, reply Reply) error {
	if err := reply.Ack(ctx, "Processing your download..."); err != nil {
		// The requester may already be gone; the job still runs to completion.
		log.Warn().Err(err).Msg("acknowledgement failed")
	}

	jobID := uuid.NewString()
	cfg := jobopts.Build(req.URL, filepath.Join(s.outputDir, jobID, "%(title)s.%(ext)s"), jobopts.Params{
		VideoFormat:  req.VideoFormat,
		VideoQuality: req.VideoQuality,
		AudioFormat:  req.AudioFormat,
		AudioQuality: req.AudioQuality,
		AudioOnly:    req.AudioOnly,
		Other:        req.Other,
	})

	log.Info().Str("job_id", jobID).Str("url", req.URL).Bool("audio_only", cfg.AudioOnly).Msg("job accepted")
	s.bus.Publish(ctx, event.Event{
		Type: event.JobStarted,
		Job:  event.JobEvent{JobID: jobID, URL: req.URL},
	})

	err := s.runner.Run(ctx, cfg, func(res runner.Result) {
		s.publishResult(ctx, jobID, req.URL, res)
		if err := reply.Edit(ctx, notify.Render(res)); err != nil {
			// Disconnected requester: discard the notification. Cleanup has
			// already been arranged by the runner.
			log.Warn().Err(err).Str("job_id", jobID).Msg("result notification dropped")
		}
	})
	if err != nil {
		return fmt.Errorf("job %s: %w", jobID, err)
	}
	return nil
}

func (s *DownloadService) publishResult(ctx context.Context, jobID, url string, res runner.Result) {
	evt := event.Event{Job: event.JobEvent{JobID: jobID, URL: url, SizeBytes: res.SizeBytes}}
	switch res.Kind {
	case runner.ResultSuccess:
		evt.Type = event.JobCompleted
	case runner.ResultTooLarge:
		evt.Type = event.JobTooLarge
	default:
		evt.Type = event.JobFailed
		evt.Job.ErrorRef = res.ErrorRef.String()
	}
	s.bus.Publish(ctx, evt)
}
