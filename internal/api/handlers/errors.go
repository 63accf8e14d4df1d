package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/watermelon1024/video-downloader-bot/internal/errorlog"
	"github.com/watermelon1024/video-downloader-bot/internal/notify"
)

type ErrorsHandler struct {
	store        *errorlog.Store
	messageLimit int
}

func NewErrorsHandler(store *errorlog.Store, messageLimit int) *ErrorsHandler {
	return &ErrorsHandler{store: store, messageLimit: messageLimit}
}

type ErrorLogInput struct {
	ID string `path:"id" doc:"Error reference id"`
}

func (h *ErrorsHandler) Get(ctx context.Context, input *ErrorLogInput) (*DataOutput[MessageDTO], error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid error id")
	}

	entry, err := h.store.Lookup(ctx, id)
	if errors.Is(err, errorlog.ErrNotFound) {
		return nil, huma.Error404NotFound("no error log with that id")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	return OK(toMessageDTO(notify.RenderErrorLog(entry, h.messageLimit))), nil
}
