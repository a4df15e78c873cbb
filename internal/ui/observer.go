package ui

import (
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

// Observer bridges state notifications into the tea event loop. It is
// invoked on the controller goroutine, so everything it forwards is
// snapshotted up front; the model never touches controller-owned data.
type Observer struct {
	events chan<- asyncMsg
}

type conversationsAddedMsg struct {
	Entries []convEntry
}

type conversationChangedMsg struct {
	Entry    convEntry
	Messages []types.Message
}

type messageAddedMsg struct {
	ConversationID string
	Active         bool
	Message        types.Message
}

func (o *Observer) ConversationsAdded(cs []*types.Conversation) {
	entries := make([]convEntry, 0, len(cs))
	for _, c := range cs {
		entries = append(entries, snapshotEntry(c))
	}
	o.events <- asyncMsg{Event: conversationsAddedMsg{Entries: entries}}
}

func (o *Observer) ConversationChanged(c *types.Conversation) {
	messages := make([]types.Message, len(c.Messages))
	copy(messages, c.Messages)
	o.events <- asyncMsg{Event: conversationChangedMsg{
		Entry:    snapshotEntry(c),
		Messages: messages,
	}}
}

func (o *Observer) MessageAdded(m types.Message, conversationID string, active bool) {
	o.events <- asyncMsg{Event: messageAddedMsg{
		ConversationID: conversationID,
		Active:         active,
		Message:        m,
	}}
}

func snapshotEntry(c *types.Conversation) convEntry {
	return convEntry{
		ID:     c.ID,
		Name:   c.DisplayName(),
		Unread: c.Unread,
	}
}
