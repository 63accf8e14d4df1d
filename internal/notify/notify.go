// Package notify maps terminal job states onto the fixed set of user-facing
// messages. Raw failure details never appear here — only reference ids.
package notify

import (
	"fmt"
	"path/filepath"

	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
	"github.com/watermelon1024/video-downloader-bot/internal/runner"
)

// DefaultMessageLimit is the longest text reply before the error detail read
// path falls back to an attachment. Chat transports cap messages at 2000
// characters; six are reserved for the code fences.
const DefaultMessageLimit = 1994

// Attachment is a file payload accompanying a message. Exactly one of Path
// (a file still on disk) or Data (in-memory content) is set.
type Attachment struct {
	Name string
	Path string
	Data []byte
}

// Message is one rendered user-facing reply.
type Message struct {
	Text       string
	Attachment *Attachment
}

// Render maps a job result onto its user-facing message. Pure.
func Render(res runner.Result) Message {
	switch res.Kind {
	case runner.ResultSuccess:
		return Message{
			Text: "Download complete!",
			Attachment: &Attachment{
				Name: filepath.Base(res.FilePath),
				Path: res.FilePath,
			},
		}
	case runner.ResultTooLarge:
		text := fmt.Sprintf("The file is too large to upload: %.2fMB", float64(res.SizeBytes)/1_000_000)
		if res.BitrateBps != nil {
			text += fmt.Sprintf(" at %.2fkbps", float64(*res.BitrateBps)/1_000)
		}
		return Message{Text: text + "."}
	default:
		return Message{
			Text: fmt.Sprintf("An error occurred while processing your request. Error ID: `%s`", res.ErrorRef),
		}
	}
}

// RenderErrorLog formats a stored failure record for the authorized read
// path. Details longer than limit become an attachment named after the id.
func RenderErrorLog(e *errorlog.Entry, limit int) Message {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	header := fmt.Sprintf("Error log `%s`, recorded at <t:%d:F> (<t:%d:R>)\n", e.ID, e.CreatedAt, e.CreatedAt)
	if len(header)+len(e.Details) <= limit {
		return Message{Text: header + "```" + e.Details + "```"}
	}
	return Message{
		Text: header,
		Attachment: &Attachment{
			Name: e.ID.String() + ".txt",
			Data: []byte(e.Details),
		},
	}
}
