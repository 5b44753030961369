package nats

import (
	"strings"

	"github.com/DocBridge-Platform/Attachment-Service/internal/services"
	"github.com/nats-io/nats.go"
)

// SubscribeAll registers every route once during startup as a durable
// JetStream consumer. Durable names are derived from the subject so
// redeploys resume where the previous process stopped.
func SubscribeAll(routes map[string]nats.MsgHandler) error {
	for subject, handler := range routes {
		durable := "attachment-service-" + strings.ReplaceAll(subject, ".", "-")
		if _, err := services.SubscribeEvent(subject, durable, handler); err != nil {
			return err
		}
	}
	return nil
}
