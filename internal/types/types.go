// Package types holds the data model shared by the client, controller, state
// and UI: channels, conversations, messages and the command/event unions that
// cross goroutine boundaries.
package types

import (
	"encoding/json"
	"fmt"
)

// MemberType tells whether a channel addresses a direct conversation between
// users or a named team channel. The wire values come from the keybase API.
type MemberType string

const (
	MemberTypeUser MemberType = "impteamnative"
	MemberTypeTeam MemberType = "team"
)

// Channel is the backend addressing unit for a conversation.
type Channel struct {
	Name        string     `json:"name"`
	TopicName   string     `json:"topic_name,omitempty"`
	MembersType MemberType `json:"members_type"`
}

// Sender identifies who sent a message and from which device.
type Sender struct {
	Username   string `json:"username"`
	DeviceName string `json:"device_name"`
}

// ContentType enumerates the message content variants the API emits.
type ContentType string

const (
	ContentJoin       ContentType = "join"
	ContentAttachment ContentType = "attachment"
	ContentMetadata   ContentType = "metadata"
	ContentSystem     ContentType = "system"
	ContentText       ContentType = "text"
	ContentUnfurl     ContentType = "unfurl"
	ContentReaction   ContentType = "reaction"
)

// MessageBody carries the rendered text of a text message.
type MessageBody struct {
	Body string `json:"body"`
}

// MessageContent is a tagged union over the content variants. Only the text
// variant carries a body; the others are recognized so they can be rendered
// as placeholders instead of failing decode.
type MessageContent struct {
	Type ContentType  `json:"type"`
	Text *MessageBody `json:"text,omitempty"`
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	type alias MessageContent
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	switch decoded.Type {
	case ContentJoin, ContentAttachment, ContentMetadata, ContentSystem,
		ContentText, ContentUnfurl, ContentReaction:
	default:
		return fmt.Errorf("unknown message content type %q", decoded.Type)
	}
	*c = MessageContent(decoded)
	return nil
}

// BodyText returns the text body for text messages and false otherwise.
func (c MessageContent) BodyText() (string, bool) {
	if c.Type == ContentText && c.Text != nil {
		return c.Text.Body, true
	}
	return "", false
}

// Message is one chat message as delivered by the API or the listener.
type Message struct {
	ConversationID string         `json:"conversation_id"`
	Channel        Channel        `json:"channel"`
	Sender         Sender         `json:"sender"`
	Content        MessageContent `json:"content"`
}

// MessageWrapper matches the {"msg": ...} envelope the API wraps each
// message in.
type MessageWrapper struct {
	Msg Message `json:"msg"`
}

// RemoteConversation is a conversation descriptor as returned by the list
// command, before any messages are attached to it.
type RemoteConversation struct {
	ID      string  `json:"id"`
	Channel Channel `json:"channel"`
	Unread  bool    `json:"unread"`
}

// Conversation is an addressable chat thread with its fetch status and
// message history. Messages are kept newest-first.
type Conversation struct {
	ID      string
	Channel Channel
	Unread  bool

	// Fetched flips to true the first time a bulk message fetch is issued
	// for this conversation and never flips back.
	Fetched bool

	// Messages in time-descending order (index 0 is the newest).
	Messages []Message
}

// NewConversation builds an unfetched Conversation from a list entry.
func NewConversation(rc RemoteConversation) *Conversation {
	return &Conversation{
		ID:      rc.ID,
		Channel: rc.Channel,
		Unread:  rc.Unread,
	}
}

// InsertMessage prepends a single message, keeping newest-first order.
func (c *Conversation) InsertMessage(m Message) {
	c.Messages = append([]Message{m}, c.Messages...)
}

// MergeMessages appends a freshly fetched batch behind any messages already
// present. Live-pushed messages are newer than anything a fetch returns, so
// existing entries stay ahead of the batch.
func (c *Conversation) MergeMessages(batch []Message) {
	c.Messages = append(c.Messages, batch...)
}

// DisplayName renders the conversation title: team channels show
// "name#topic", direct conversations show the raw channel name.
func (c *Conversation) DisplayName() string {
	if c.Channel.MembersType == MemberTypeTeam {
		return c.Channel.Name + "#" + c.Channel.TopicName
	}
	return c.Channel.Name
}

// UICommand is a command issued by the renderer to the controller.
type UICommand interface {
	uiCommand()
}

// SendMessage asks the controller to send text to the current conversation.
type SendMessage struct {
	Body string
}

// SwitchConversation asks the controller to make another conversation
// current, fetching its history on first visit.
type SwitchConversation struct {
	ConversationID string
}

func (SendMessage) uiCommand()        {}
func (SwitchConversation) uiCommand() {}
