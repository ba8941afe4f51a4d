package session

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/five82/triagedesk/internal/triage"
)

// SendMessage appends the user's message and a typing placeholder, then
// returns the Task that exchanges it with the assistant. Blank input and a
// send already in flight are rejected with ok=false and leave state untouched.
//
// The placeholder is replaced by id exactly once, with the trimmed reply, the
// no-response text, or "Error: <reason>". The assistant mode is refreshed after
// every exchange before the send flag is released.
func (c *Controller) SendMessage(text string) (Task, bool) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return nil, false
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return nil, false
	}
	c.sending = true
	c.messages = append(c.messages, Message{
		ID:        c.newID(),
		Role:      RoleUser,
		Text:      msg,
		CreatedAt: c.now(),
	})
	placeholderID := c.newID()
	c.messages = append(c.messages, Message{
		ID:        placeholderID,
		Role:      RoleAssistant,
		Text:      TypingText,
		CreatedAt: c.now(),
		Pending:   true,
	})
	userID := c.userID
	c.mu.Unlock()

	task := func(ctx context.Context) {
		defer c.release(&c.sending)

		reply, err := c.api.SendMessage(ctx, triage.MessageRequest{Message: msg, UserID: userID})
		var answer string
		if err != nil {
			log.Warn().Err(err).Msg("message exchange failed")
			answer = errorPrefix + failureReason(err, triage.FallbackMessage)
		} else {
			answer = strings.TrimSpace(reply.Response)
			if answer == "" {
				answer = NoResponseText
			}
		}
		c.resolvePlaceholder(placeholderID, answer)
		c.refreshMode(ctx)
	}
	return task, true
}

// SendSuggestion sends the canned prompt at index i.
func (c *Controller) SendSuggestion(i int) (Task, bool) {
	if i < 0 || i >= len(Suggestions) {
		return nil, false
	}
	return c.SendMessage(Suggestions[i].Text)
}

func (c *Controller) resolvePlaceholder(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.messages {
		if c.messages[i].ID == id && c.messages[i].Pending {
			c.messages[i].Text = text
			c.messages[i].Pending = false
			return
		}
	}
	log.Debug().Str("id", id).Msg("placeholder not found")
}
