package nats

import (
	"github.com/DocBridge-Platform/Attachment-Service/internal/api/handlers"
	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/nats-io/nats.go"
)

func Routes(svc *upload.Service) map[string]nats.MsgHandler {
	return map[string]nats.MsgHandler{

		// Expiry verdicts from the external sweep
		"uploads.expired": handlers.HandleUploadExpired(svc),
	}
}
