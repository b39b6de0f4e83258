package push

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier fans one notification out to every device a user has
// registered. Delivery is best effort.
type Notifier struct {
	client *Client
	tokens *TokenStore
}

func NewNotifier(client *Client, tokens *TokenStore) *Notifier {
	return &Notifier{client: client, tokens: tokens}
}

// Push sends title/body to all of the user's devices. Failures are
// logged and never returned.
func (n *Notifier) Push(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	tokens, err := n.tokens.Tokens(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to load push tokens")
		return
	}

	for _, token := range tokens {
		msg := &Message{Token: token, Title: title, Body: body, Data: data}
		if err := n.client.Send(ctx, msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("push delivery failed")
		}
	}
}

// RegisterDevice records a device token for the user.
func (n *Notifier) RegisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	return n.tokens.Register(ctx, userID, token)
}

// UnregisterDevice drops a device token for the user.
func (n *Notifier) UnregisterDevice(ctx context.Context, userID uuid.UUID, token string) error {
	return n.tokens.Unregister(ctx, userID, token)
}
