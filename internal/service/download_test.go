package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/watermelon1024/video-downloader-bot/internal/event"
	"github.com/watermelon1024/video-downloader-bot/internal/jobopts"
	"github.com/watermelon1024/video-downloader-bot/internal/notify"
	"github.com/watermelon1024/video-downloader-bot/internal/runner"
)

type stubRunner struct {
	result  runner.Result
	err     error
	lastCfg jobopts.JobConfig
}

func (r *stubRunner) Run(_ context.Context, cfg jobopts.JobConfig, deliver func(runner.Result)) error {
	r.lastCfg = cfg
	if r.err != nil {
		return r.err
	}
	deliver(r.result)
	return nil
}

type stubReply struct {
	acks    []string
	edits   []notify.Message
	ackErr  error
	editErr error
}

func (r *stubReply) Ack(_ context.Context, text string) error {
	r.acks = append(r.acks, text)
	return r.ackErr
}

func (r *stubReply) Edit(_ context.Context, msg notify.Message) error {
	r.edits = append(r.edits, msg)
	return r.editErr
}

func TestHandleSuccessFlow(t *testing.T) {
	run := &stubRunner{result: runner.Result{
		Kind:      runner.ResultSuccess,
		FilePath:  "/tmp/j/out.mp4",
		SizeBytes: 100,
	}}
	bus := event.NewBus()

	var published []event.Type
	for _, et := range []event.Type{event.JobStarted, event.JobCompleted, event.JobFailed} {
		bus.Subscribe(et, func(_ context.Context, e event.Event) {
			published = append(published, e.Type)
		})
	}

	reply := &stubReply{}
	svc := New(run, bus, ".cache/videos")
	if err := svc.Handle(context.Background(), Request{URL: "https://example.com/v"}, reply); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(reply.acks) != 1 {
		t.Errorf("acks = %d, want 1", len(reply.acks))
	}
	if len(reply.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(reply.edits))
	}
	if reply.edits[0].Attachment == nil {
		t.Error("success edit missing attachment")
	}

	wantEvents := []event.Type{event.JobStarted, event.JobCompleted}
	if len(published) != len(wantEvents) {
		t.Fatalf("published %v, want %v", published, wantEvents)
	}
	for i, et := range wantEvents {
		if published[i] != et {
			t.Errorf("event[%d] = %s, want %s", i, published[i], et)
		}
	}
}

func TestHandleBuildsPerJobOutputTemplate(t *testing.T) {
	run := &stubRunner{result: runner.Result{Kind: runner.ResultSuccess, FilePath: "f", SizeBytes: 1}}
	svc := New(run, event.NewBus(), ".cache/videos")

	if err := svc.Handle(context.Background(), Request{URL: "u"}, &stubReply{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	first := run.lastCfg.OutputTemplate
	if err := svc.Handle(context.Background(), Request{URL: "u"}, &stubReply{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if first == run.lastCfg.OutputTemplate {
		t.Error("two jobs share an output template")
	}
	if !strings.HasPrefix(first, ".cache/videos/") || !strings.HasSuffix(first, "%(title)s.%(ext)s") {
		t.Errorf("template = %q", first)
	}
}

func TestHandlePassesOverridesToBuilder(t *testing.T) {
	run := &stubRunner{result: runner.Result{Kind: runner.ResultSuccess, FilePath: "f", SizeBytes: 1}}
	svc := New(run, event.NewBus(), "out")

	req := Request{URL: "u", AudioOnly: true, AudioFormat: "opus"}
	if err := svc.Handle(context.Background(), req, &stubReply{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	cfg := run.lastCfg
	if !cfg.AudioOnly || len(cfg.Steps) != 1 || cfg.Steps[0].TargetFormat != "opus" {
		t.Errorf("built config = %+v", cfg)
	}
}

func TestHandleDiscardsNotificationForGoneRequester(t *testing.T) {
	run := &stubRunner{result: runner.Result{Kind: runner.ResultFailed, ErrorRef: uuid.New()}}
	reply := &stubReply{ackErr: errors.New("gone"), editErr: errors.New("gone")}

	svc := New(run, event.NewBus(), "out")
	if err := svc.Handle(context.Background(), Request{URL: "u"}, reply); err != nil {
		t.Errorf("Handle returned %v for a disconnected requester", err)
	}
}

func TestHandlePropagatesStorageFailure(t *testing.T) {
	run := &stubRunner{err: errors.New("persist failure details: disk full")}

	svc := New(run, event.NewBus(), "out")
	err := svc.Handle(context.Background(), Request{URL: "u"}, &stubReply{})
	if err == nil {
		t.Fatal("expected storage failure to propagate")
	}
}
