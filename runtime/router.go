package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"messenger-lab/contract"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/observability"
	"messenger-lab/protocol"
	"messenger-lab/repositories"
)

// Router validates and delivers direct messages and typing signals
// between exactly two identities. Delivery is fire-and-forget: a stale
// recipient handle is logged and skipped, the message stays durably
// recorded and surfaces through history on the next fetch.
type Router struct {
	log      *slog.Logger
	accounts repositories.IAccountRepository
	messages repositories.IMessageRepository
	registry contract.ISessionRegistry
	monitor  *observability.Monitor
}

func NewRouter(log *slog.Logger, accounts repositories.IAccountRepository,
	messages repositories.IMessageRepository, registry contract.ISessionRegistry,
	monitor *observability.Monitor) *Router {
	return &Router{log: log, accounts: accounts, messages: messages, registry: registry, monitor: monitor}
}

// SendMessage persists a message with a server-assigned id and
// timestamp, always echoes the persisted record back to the sender, and
// delivers it to the recipient when online. Never delivers to any other
// connection. Both endpoints must exist and not be banned at creation
// time.
func (r *Router) SendMessage(ctx context.Context, senderID, recipientID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.ErrEmptyContent
	}

	sender, err := r.accounts.FindByID(senderID)
	if err != nil {
		return fmt.Errorf("sender lookup: %w", err)
	}
	recipient, err := r.accounts.FindByID(recipientID)
	if err != nil {
		return fmt.Errorf("recipient lookup: %w", err)
	}
	if sender.Banned || recipient.Banned {
		return errors.ErrNotAuthorized
	}

	message := domain.Message{
		ID:             uuid.New().String(),
		SenderID:       sender.ID,
		RecipientID:    recipient.ID,
		SenderUsername: sender.Username,
		Content:        content,
		Timestamp:      time.Now().UTC(),
	}
	if err := r.messages.Insert(message); err != nil {
		r.monitor.IncrStoreErrors()
		return fmt.Errorf("message insert: %w", err)
	}
	r.monitor.IncrMessagesPersisted()

	event := protocol.NewMessage(message)
	if sink, online := r.registry.Get(recipient.ID); online {
		if err := sink.Send(ctx, event); err != nil {
			r.log.Debug("delivery to recipient failed", "recipient_id", recipient.ID, "error", err)
		} else {
			r.monitor.IncrMessagesDelivered()
		}
	}
	// Echo so the sender's UI reflects the authoritative persisted
	// record, including the server timestamp and generated id.
	if sink, online := r.registry.Get(sender.ID); online {
		if err := sink.Send(ctx, event); err != nil {
			r.log.Debug("echo to sender failed", "sender_id", sender.ID, "error", err)
		}
	}
	return nil
}

// GetHistory returns the conversation between the requester and the
// other endpoint, both directions, sorted by timestamp ascending. The
// requester must hold an active session.
func (r *Router) GetHistory(requesterID, recipientID string) ([]domain.Message, error) {
	if !r.registry.IsOnline(requesterID) {
		return nil, errors.ErrNotAuthorized
	}
	messages, err := r.messages.FindBetween(requesterID, recipientID)
	if err != nil {
		r.monitor.IncrStoreErrors()
		return nil, fmt.Errorf("history fetch: %w", err)
	}
	return messages, nil
}

// RelayTyping forwards a transient typing notification to the recipient
// if online. Not persisted, no acknowledgment to the sender.
func (r *Router) RelayTyping(ctx context.Context, senderID, recipientID string, typing bool) {
	sink, online := r.registry.Get(recipientID)
	if !online {
		return
	}
	if err := sink.Send(ctx, protocol.NewTyping(senderID, typing)); err != nil {
		r.log.Debug("typing relay failed", "recipient_id", recipientID, "error", err)
	}
}

// IsTransient reports whether a routing error concerns only the
// triggering event (bad input, unknown endpoint) as opposed to a store
// failure worth surfacing generically.
func IsTransient(err error) bool {
	return stderrors.Is(err, errors.ErrEmptyContent) ||
		stderrors.Is(err, errors.ErrNotFound) ||
		stderrors.Is(err, errors.ErrNotAuthorized)
}
