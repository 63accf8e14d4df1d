package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
	"github.com/watermelon1024/video-downloader-bot/internal/runner"
)

func TestRenderSuccess(t *testing.T) {
	msg := Render(runner.Result{
		Kind:      runner.ResultSuccess,
		FilePath:  "/tmp/job-1/My Video.mp4",
		SizeBytes: 1234,
	})

	if msg.Attachment == nil {
		t.Fatal("success message has no attachment")
	}
	if msg.Attachment.Name != "My Video.mp4" {
		t.Errorf("attachment name = %q", msg.Attachment.Name)
	}
	if msg.Attachment.Path != "/tmp/job-1/My Video.mp4" {
		t.Errorf("attachment path = %q", msg.Attachment.Path)
	}
	if msg.Text == "" {
		t.Error("success message has no text")
	}
}

func TestRenderTooLargeWithBitrate(t *testing.T) {
	rate := uint64(128000)
	msg := Render(runner.Result{
		Kind:       runner.ResultTooLarge,
		FilePath:   "/tmp/big.mp4",
		SizeBytes:  30_000_000,
		BitrateBps: &rate,
	})

	if !strings.Contains(msg.Text, "30.00MB") {
		t.Errorf("message %q missing 30.00MB", msg.Text)
	}
	if !strings.Contains(msg.Text, "128.00kbps") {
		t.Errorf("message %q missing 128.00kbps", msg.Text)
	}
	if msg.Attachment != nil {
		t.Error("too-large message must not carry the file")
	}
}

func TestRenderTooLargeWithoutBitrate(t *testing.T) {
	msg := Render(runner.Result{
		Kind:      runner.ResultTooLarge,
		FilePath:  "/tmp/big.mp4",
		SizeBytes: 30_000_000,
	})

	if !strings.Contains(msg.Text, "30.00MB") {
		t.Errorf("message %q missing 30.00MB", msg.Text)
	}
	if strings.Contains(msg.Text, "kbps") {
		t.Errorf("message %q mentions bitrate despite inspection failure", msg.Text)
	}
}

func TestRenderFailed(t *testing.T) {
	ref := uuid.New()
	msg := Render(runner.Result{Kind: runner.ResultFailed, ErrorRef: ref})

	if !strings.Contains(msg.Text, ref.String()) {
		t.Errorf("message %q missing error reference", msg.Text)
	}
	if msg.Attachment != nil {
		t.Error("failed message must not carry an attachment")
	}
}

func TestRenderErrorLogShortDetailsInline(t *testing.T) {
	entry := &errorlog.Entry{
		ID:        uuid.New(),
		Details:   "ERROR: something broke",
		CreatedAt: time.Now().Unix(),
	}

	msg := RenderErrorLog(entry, 0)
	if msg.Attachment != nil {
		t.Error("short details should render inline")
	}
	if !strings.Contains(msg.Text, "```ERROR: something broke```") {
		t.Errorf("message %q missing fenced details", msg.Text)
	}
	if !strings.Contains(msg.Text, entry.ID.String()) {
		t.Error("message missing entry id")
	}
}

func TestRenderErrorLogLongDetailsBecomeAttachment(t *testing.T) {
	entry := &errorlog.Entry{
		ID:        uuid.New(),
		Details:   strings.Repeat("x", DefaultMessageLimit+1),
		CreatedAt: time.Now().Unix(),
	}

	msg := RenderErrorLog(entry, 0)
	if msg.Attachment == nil {
		t.Fatal("long details should become an attachment")
	}
	if msg.Attachment.Name != entry.ID.String()+".txt" {
		t.Errorf("attachment name = %q", msg.Attachment.Name)
	}
	if string(msg.Attachment.Data) != entry.Details {
		t.Error("attachment data does not match details")
	}
	if strings.Contains(msg.Text, "```") {
		t.Error("overflow message should not inline the details")
	}
}

func TestRenderErrorLogBoundary(t *testing.T) {
	entry := &errorlog.Entry{ID: uuid.New(), CreatedAt: 1700000000}
	header := strings.Split(RenderErrorLog(entry, 0).Text, "```")[0]

	// Details sized so header+details lands exactly on the limit stay inline.
	entry.Details = strings.Repeat("y", DefaultMessageLimit-len(header))
	if msg := RenderErrorLog(entry, 0); msg.Attachment != nil {
		t.Error("details at the limit should render inline")
	}

	entry.Details += "y"
	if msg := RenderErrorLog(entry, 0); msg.Attachment == nil {
		t.Error("details one past the limit should become an attachment")
	}
}
