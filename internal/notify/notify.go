// internal/notify/notify.go
package notify

import (
	"context"
	"time"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/eam"
)

const (
	EventWriteFailed      = "eam.write.failed"
	EventRetriesExhausted = "eam.write.retries_exhausted"
	channelEmail          = "ses"
	channelEvents         = "sns"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// EventPublisher is satisfied by aws.SNSClient.
type EventPublisher interface {
	PublishJSON(ctx context.Context, topicARN, eventType string, payload interface{}) (string, error)
}

// WriteFailureEvent is published for every EAM write that did not create its record.
type WriteFailureEvent struct {
	RequestID         string    `json:"request_id"`
	Entity            string    `json:"entity"`
	Code              string    `json:"code"`
	Status            string    `json:"status"`
	Attempts          int       `json:"attempts"`
	MaxRetriesReached bool      `json:"max_retries_reached"`
	Error             string    `json:"error,omitempty"`
	ResponseBody      string    `json:"response_body,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Notifier sends incident summaries by email and EAM write failures as
// events. Either channel may be disabled; a nil *Notifier does nothing.
type Notifier struct {
	email    EmailSender
	events   EventPublisher
	from     string
	to       []string
	topicARN string
	logger   logger.Logger
}

// New enables each channel only when it is switched on in cfg and a client is given.
func New(cfg config.IntegrationConfig, email EmailSender, events EventPublisher, log logger.Logger) *Notifier {
	n := &Notifier{logger: log.WithFields(map[string]interface{}{"component": "notify"})}
	if cfg.AWS.SES.Enabled && email != nil && cfg.AWS.SES.FromEmail != "" && len(cfg.AWS.SES.ToEmails) > 0 {
		n.email = email
		n.from = cfg.AWS.SES.FromEmail
		n.to = cfg.AWS.SES.ToEmails
	}
	if cfg.AWS.SNS.Enabled && events != nil && cfg.AWS.SNS.TopicARN != "" {
		n.events = events
		n.topicARN = cfg.AWS.SNS.TopicARN
	}
	return n
}

// SendSummary emails body to the configured recipients.
func (n *Notifier) SendSummary(ctx context.Context, subject, body string) error {
	if n == nil || n.email == nil {
		return nil
	}
	id, err := n.email.SendText(ctx, n.from, n.to, subject, body)
	if err != nil {
		n.logger.Error("failed to send summary email", map[string]interface{}{
			"subject": subject,
			"error":   err.Error(),
		})
		return apperrors.NewNotificationSendFailedError(channelEmail, err)
	}
	n.logger.Info("summary email sent", map[string]interface{}{"messageId": id})
	return nil
}

// PublishWriteFailures publishes one event per result that was not created
// and returns how many were published.
func (n *Notifier) PublishWriteFailures(ctx context.Context, requestID string, results []*eam.CreateResult) int {
	if n == nil || n.events == nil {
		return 0
	}

	published := 0
	for _, r := range results {
		if r == nil || r.OK() {
			continue
		}
		eventType := EventWriteFailed
		if r.MaxRetriesReached {
			eventType = EventRetriesExhausted
		}
		event := WriteFailureEvent{
			RequestID:         requestID,
			Entity:            r.Entity,
			Code:              r.Code,
			Status:            string(r.Status),
			Attempts:          r.Attempts,
			MaxRetriesReached: r.MaxRetriesReached,
			Error:             r.Error,
			ResponseBody:      r.ResponseBody,
			OccurredAt:        time.Now().UTC(),
		}
		if _, err := n.events.PublishJSON(ctx, n.topicARN, eventType, event); err != nil {
			n.logger.Warn("failed to publish EAM write failure", map[string]interface{}{
				"channel": channelEvents,
				"entity":  r.Entity,
				"code":    r.Code,
				"error":   err.Error(),
			})
			continue
		}
		published++
	}
	return published
}
