// Package state holds the canonical in-memory chat state. It has exactly
// one owner (the controller goroutine); everything else sees it through the
// Observer interface, which fires synchronously on each mutation.
package state

import (
	"errors"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

// ErrUnknownConversation is returned by mutators that reference a
// conversation id with no live entry. Callers treat it as non-fatal.
var ErrUnknownConversation = errors.New("unknown conversation id")

// Observer receives push notifications on state mutations. Observers are
// invoked synchronously, in registration order, on the mutating goroutine,
// so implementations must not block and must copy anything they keep.
type Observer interface {
	// ConversationChanged fires when another conversation becomes current.
	ConversationChanged(c *types.Conversation)
	// ConversationsAdded fires once per bulk load with the loaded list.
	ConversationsAdded(cs []*types.Conversation)
	// MessageAdded fires for each incoming message before it is stored.
	// active is true when the message belongs to the current conversation.
	MessageAdded(m types.Message, conversationID string, active bool)
}

// ApplicationState maps conversation ids to conversations and tracks which
// one is current. Conversations are never removed during a session.
type ApplicationState struct {
	conversations map[string]*types.Conversation
	order         []string
	current       string
	observers     []Observer
	log           *chatlog.Logger
}

func New(log *chatlog.Logger) *ApplicationState {
	return &ApplicationState{
		conversations: make(map[string]*types.Conversation),
		log:           log,
	}
}

// RegisterObserver appends o to the notification list. Order of
// registration is the order of delivery.
func (s *ApplicationState) RegisterObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// InsertConversation inserts or overwrites by id without notifying anyone.
func (s *ApplicationState) InsertConversation(c *types.Conversation) {
	if _, ok := s.conversations[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.conversations[c.ID] = c
}

// SetConversations bulk-loads a conversation list and fires
// ConversationsAdded exactly once with the input list.
func (s *ApplicationState) SetConversations(cs []*types.Conversation) {
	s.log.Debugf("state: loading %d conversations", len(cs))
	for _, o := range s.observers {
		o.ConversationsAdded(cs)
	}
	for _, c := range cs {
		s.InsertConversation(c)
	}
}

// InsertMessage prepends m to the conversation's history, notifying
// observers first with the active flag. An unknown id leaves state and
// observers untouched and reports ErrUnknownConversation.
func (s *ApplicationState) InsertMessage(conversationID string, m types.Message) error {
	c, ok := s.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	active := conversationID == s.current
	for _, o := range s.observers {
		o.MessageAdded(m, conversationID, active)
	}
	c.InsertMessage(m)
	return nil
}

// MergeMessages appends a fetched batch behind the conversation's existing
// (newer) messages. Bulk merges do not notify; the conversation-change
// notification that follows a switch carries the merged history.
func (s *ApplicationState) MergeMessages(conversationID string, batch []types.Message) error {
	c, ok := s.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	c.MergeMessages(batch)
	return nil
}

// MarkFetched flips the conversation's fetched flag to true. The flag never
// flips back.
func (s *ApplicationState) MarkFetched(conversationID string) error {
	c, ok := s.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	c.Fetched = true
	return nil
}

// SetCurrentConversation repoints current and fires ConversationChanged. An
// unknown id changes nothing, fires nothing, and reports
// ErrUnknownConversation.
func (s *ApplicationState) SetCurrentConversation(conversationID string) error {
	c, ok := s.conversations[conversationID]
	if !ok {
		return ErrUnknownConversation
	}
	s.current = conversationID
	s.log.Debugf("state: current conversation is now %s", conversationID)
	for _, o := range s.observers {
		o.ConversationChanged(c)
	}
	return nil
}

// Conversation looks up one conversation by id.
func (s *ApplicationState) Conversation(conversationID string) (*types.Conversation, bool) {
	c, ok := s.conversations[conversationID]
	return c, ok
}

// CurrentConversation returns the current conversation, if any.
func (s *ApplicationState) CurrentConversation() (*types.Conversation, bool) {
	if s.current == "" {
		return nil, false
	}
	return s.Conversation(s.current)
}

// Conversations returns all conversations in insertion order.
func (s *ApplicationState) Conversations() []*types.Conversation {
	out := make([]*types.Conversation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.conversations[id])
	}
	return out
}
