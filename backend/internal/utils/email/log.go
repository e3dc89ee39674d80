package email

import "log/slog"

// LogSender writes messages to the log instead of sending them. It is the
// delivery channel in development and whenever SMTP is not configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(recipientEmail, subject, body string) error {
	s.log.Info("email not sent, logging instead", "to", recipientEmail, "subject", subject, "body", body)
	return nil
}
