package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier delivers out-of-band messages to users.
type Notifier interface {
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// LogNotifier writes notifications to the application log instead of
// sending them.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordResetCode(ctx context.Context, email, code string) error {
	n.log.WithFields(logrus.Fields{
		"email":   email,
		"channel": "log",
	}).Infof("Password reset code issued: %s", code)
	return nil
}
