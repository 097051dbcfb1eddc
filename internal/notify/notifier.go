package notify

import (
	"context"

	"github.com/JabulaniUsen/new-leenk/internal/domain"
	"github.com/JabulaniUsen/new-leenk/pkg/logger"
)

// Notifier dispatches out-of-band notifications for new messages.
// Fire-and-forget: a send must never fail because notification failed, so
// implementations log errors instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, msg domain.Message, conv domain.Conversation, biz domain.Business)
}

// LogNotifier is the default implementation; the hosted email collaborator is
// wired in deployments that have one.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Message, conv domain.Conversation, biz domain.Business) {
	n.log.Infof("notify: message %s in conversation %s (business %s, customer %s)",
		msg.ID, conv.ID, biz.BusinessName, conv.CustomerEmail)
}
