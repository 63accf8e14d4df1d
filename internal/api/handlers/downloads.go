package handlers

import (
	"context"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
	"github.com/watermelon1024/video-downloader-bot/internal/api/middleware"
	"github.com/watermelon1024/video-downloader-bot/internal/notify"
	"github.com/watermelon1024/video-downloader-bot/internal/service"
)

type DownloadsHandler struct {
	svc *service.DownloadService
}

func NewDownloadsHandler(svc *service.DownloadService) *DownloadsHandler {
	return &DownloadsHandler{svc: svc}
}

type AddDownloadInput struct {
	Body struct {
		URL          string `json:"url" minLength:"1" doc:"Media URL to download"`
		VideoFormat  string `json:"video_format,omitempty" doc:"Target video container format"`
		VideoQuality string `json:"video_quality,omitempty" doc:"Target video bitrate, e.g. 500k"`
		AudioFormat  string `json:"audio_format,omitempty" doc:"Target audio codec"`
		AudioQuality string `json:"audio_quality,omitempty" doc:"Target audio bitrate, e.g. 192k"`
		AudioOnly    string `json:"audio_only,omitempty" doc:"\"true\" to keep only the audio track"`
		Other        string `json:"other,omitempty" doc:"Reserved"`
	}
}

// MessageDTO is a rendered user-facing reply: final text plus an optional
// attachment payload.
type MessageDTO struct {
	Text       string         `json:"text" doc:"Message text"`
	Attachment *AttachmentDTO `json:"attachment,omitempty" doc:"File payload, when the job produced one"`
}

type AttachmentDTO struct {
	Name string `json:"name" doc:"Suggested file name"`
	Data []byte `json:"data" doc:"File content, base64-encoded"`
}

// httpReply adapts the synchronous HTTP response to the reply-channel
// contract: the acknowledgement is implicit, the edit is the response body.
// Attachment files are materialized here, before the runner removes them.
type httpReply struct {
	final *notify.Message
}

func (r *httpReply) Ack(context.Context, string) error { return nil }

func (r *httpReply) Edit(_ context.Context, msg notify.Message) error {
	if msg.Attachment != nil && msg.Attachment.Path != "" && msg.Attachment.Data == nil {
		data, err := os.ReadFile(msg.Attachment.Path)
		if err != nil {
			return err
		}
		msg.Attachment.Data = data
	}
	r.final = &msg
	return nil
}

func (h *DownloadsHandler) Add(ctx context.Context, input *AddDownloadInput) (*DataOutput[MessageDTO], error) {
	user := middleware.GetUser(ctx)
	log.Debug().Str("url", input.Body.URL).Str("user", user).Msg("add download request")

	reply := &httpReply{}
	err := h.svc.Handle(ctx, service.Request{
		URL:          input.Body.URL,
		VideoFormat:  input.Body.VideoFormat,
		VideoQuality: input.Body.VideoQuality,
		AudioFormat:  input.Body.AudioFormat,
		AudioQuality: input.Body.AudioQuality,
		AudioOnly:    input.Body.AudioOnly == "true",
		Other:        input.Body.Other,
	}, reply)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	if reply.final == nil {
		return nil, huma.Error500InternalServerError("no result produced")
	}

	return OK(toMessageDTO(*reply.final)), nil
}

func toMessageDTO(msg notify.Message) MessageDTO {
	dto := MessageDTO{Text: msg.Text}
	if msg.Attachment != nil {
		dto.Attachment = &AttachmentDTO{
			Name: msg.Attachment.Name,
			Data: msg.Attachment.Data,
		}
	}
	return dto
}
