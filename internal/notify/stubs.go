package notify

import "log/slog"

// Notifier delivers "processing complete" intents to a human. Calls are
// fire-and-forget: the pipeline has already committed before it notifies,
// and a delivery failure never rolls anything back.
type Notifier interface {
	Email(toUserID, subject, body string)
	SMS(toUserID, body string)
}

// LogStub logs send intents instead of calling a real provider.
type LogStub struct {
	log *slog.Logger
}

func NewLogStub(log *slog.Logger) *LogStub {
	if log == nil {
		log = slog.Default()
	}
	return &LogStub{log: log}
}

func (s *LogStub) Email(toUserID, subject, body string) {
	s.log.Info("notify.email_intent",
		"to_user_id", toUserID,
		"subject", subject,
		"body", body,
	)
}

func (s *LogStub) SMS(toUserID, body string) {
	s.log.Info("notify.sms_intent",
		"to_user_id", toUserID,
		"body", body,
	)
}
