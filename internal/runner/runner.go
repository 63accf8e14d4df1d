// Package runner executes one download/transcode job against the external
// yt-dlp tool, applies the size policy to the output, and guarantees the
// output file is cleaned up on every exit path.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/watermelon1024/video-downloader-bot/internal/jobopts"
)

// DefaultSizeThreshold is the largest output, in bytes, that is delivered as
// an attachment. Anything bigger gets a metrics report instead.
const DefaultSizeThreshold = 25_000_000

type ResultKind string

const (
	ResultSuccess  ResultKind = "success"
	ResultTooLarge ResultKind = "too_large"
	ResultFailed   ResultKind = "failed"
)

// Result is the terminal state of one job. FilePath is only meaningful for
// ResultSuccess and ResultTooLarge, and is guaranteed to exist on disk while
// the deliver callback runs — and to be removed once Run returns.
type Result struct {
	Kind       ResultKind
	FilePath   string
	SizeBytes  uint64
	BitrateBps *uint64
	ErrorRef   uuid.UUID
}

// ErrorStore persists failure details and hands back a reference id.
type ErrorStore interface {
	Record(ctx context.Context, details string) (uuid.UUID, error)
}

// BitrateProber inspects a media file's bitrate. Best-effort only.
type BitrateProber interface {
	Bitrate(ctx context.Context, path string) (uint64, error)
}

type Options struct {
	Binary        string
	CacheDir      string
	FFmpegPath    string
	Debug         bool
	SizeThreshold int64
}

type Runner struct {
	opts   Options
	store  ErrorStore
	prober BitrateProber

	// invoke runs the external tool; swapped out in tests.
	invoke invokeFunc
}

func New(opts Options, store ErrorStore, prober BitrateProber) *Runner {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	if opts.SizeThreshold <= 0 {
		opts.SizeThreshold = DefaultSizeThreshold
	}
	return &Runner{
		opts:   opts,
		store:  store,
		prober: prober,
		invoke: invokeTool,
	}
}

// Run executes one job and passes its terminal result to deliver. The output
// file, when one was produced, stays on disk until deliver returns and is
// then removed — success, too-large and failure paths alike. Run only errors
// when failure details could not be persisted; every other problem is folded
// into a ResultFailed carrying a reference id.
func (r *Runner) Run(ctx context.Context, cfg jobopts.JobConfig, deliver func(Result)) error {
	st := &jobState{}
	invokeErr := r.invoke(ctx, r.opts.Binary, buildArgs(cfg, r.opts), st)

	if st.FinalPath != "" {
		defer func() {
			if err := os.Remove(st.FinalPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Str("path", st.FinalPath).Msg("output file cleanup failed")
			}
		}()
	}

	res, err := r.resolve(ctx, st, invokeErr)
	if err != nil {
		return err
	}

	deliver(res)
	return nil
}

func (r *Runner) resolve(ctx context.Context, st *jobState, invokeErr error) (Result, error) {
	if invokeErr == nil && st.FinalPath == "" {
		invokeErr = errors.New("tool exited cleanly but reported no output file")
	}

	var size int64
	if invokeErr == nil {
		info, statErr := os.Stat(st.FinalPath)
		if statErr != nil {
			invokeErr = fmt.Errorf("stat output file: %w", statErr)
		} else {
			size = info.Size()
		}
	}

	if invokeErr != nil {
		ref, recErr := r.store.Record(ctx, formatFailure(invokeErr, st))
		if recErr != nil {
			return Result{}, fmt.Errorf("persist failure details: %w", recErr)
		}
		log.Error().Err(invokeErr).Str("error_ref", ref.String()).Msg("job failed")
		return Result{Kind: ResultFailed, ErrorRef: ref}, nil
	}

	if size <= r.opts.SizeThreshold {
		return Result{
			Kind:      ResultSuccess,
			FilePath:  st.FinalPath,
			SizeBytes: uint64(size),
		}, nil
	}

	res := Result{
		Kind:      ResultTooLarge,
		FilePath:  st.FinalPath,
		SizeBytes: uint64(size),
	}
	// Inspection failure must not fail the job; the report just omits the
	// bitrate clause.
	if rate, err := r.prober.Bitrate(ctx, st.FinalPath); err != nil {
		log.Debug().Err(err).Str("path", st.FinalPath).Msg("bitrate inspection failed")
	} else {
		res.BitrateBps = &rate
	}
	return res, nil
}

func formatFailure(err error, st *jobState) string {
	if st.LastError != "" {
		return fmt.Sprintf("%v\nERROR: %s", err, st.LastError)
	}
	return err.Error()
}
