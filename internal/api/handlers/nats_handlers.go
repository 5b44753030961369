package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/DocBridge-Platform/Attachment-Service/internal/upload"
	"github.com/nats-io/nats.go"
)

// UploadExpiredEvent is published by the external expiry sweep for every
// session whose horizon has passed.
type UploadExpiredEvent struct {
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id"`
}

// HandleUploadExpired applies an expiry verdict to the session state
// machine. Already-terminal sessions are acked silently; the sweep can
// race with completion and cancellation.
func HandleUploadExpired(svc *upload.Service) nats.MsgHandler {
	return func(msg *nats.Msg) {
		var payload UploadExpiredEvent
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[NATS] uploads.expired: invalid payload: %v", err)
			_ = msg.Nak()
			return
		}

		if payload.SessionID == "" {
			log.Printf("[NATS] uploads.expired: missing session_id")
			_ = msg.Nak()
			return
		}

		err := svc.ExpireSession(context.Background(), payload.SessionID)
		if err != nil && !errors.Is(err, upload.ErrSessionNotFound) {
			log.Printf("[NATS] uploads.expired: failed for %s: %v", payload.SessionID, err)
			_ = msg.Nak()
			return
		}

		log.Printf("[NATS] session expired: %s", payload.SessionID)
		_ = msg.Ack()
	}
}
