// Package controller runs the session's single event loop: it bootstraps
// state from the backend, then multiplexes pushed listener events and
// UI-issued commands, applying every change through the application state.
package controller

import (
	"context"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/state"
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

const defaultFetchCount = 20

// API is the slice of the client façade the controller drives. Calls block
// until the underlying subprocess finishes; issuing them inline from the
// loop serializes them, so no two identically shaped requests are ever in
// flight at once.
type API interface {
	FetchConversations(ctx context.Context) ([]types.RemoteConversation, error)
	FetchMessages(ctx context.Context, channel types.Channel, count uint) ([]types.Message, error)
	SendMessage(ctx context.Context, channel types.Channel, body string) error
}

type Controller struct {
	api        API
	state      *state.ApplicationState
	events     <-chan types.ListenerEvent
	commands   chan types.UICommand
	fetchCount uint
	log        *chatlog.Logger
}

type Options struct {
	// FetchCount is how many messages a switch fetches. Zero means the
	// default of 20.
	FetchCount uint
	// CommandBuffer sizes the UI command channel. Zero means 32.
	CommandBuffer int
}

func New(a API, st *state.ApplicationState, events <-chan types.ListenerEvent, log *chatlog.Logger, opts Options) *Controller {
	fetchCount := opts.FetchCount
	if fetchCount == 0 {
		fetchCount = defaultFetchCount
	}
	buffer := opts.CommandBuffer
	if buffer <= 0 {
		buffer = 32
	}
	return &Controller{
		api:        a,
		state:      st,
		events:     events,
		commands:   make(chan types.UICommand, buffer),
		fetchCount: fetchCount,
		log:        log,
	}
}

// Commands is where the renderer drops user-issued commands.
func (c *Controller) Commands() chan<- types.UICommand {
	return c.commands
}

// Init bootstraps state: it fetches the conversation list and, when
// non-empty, bulk-loads it and makes the first entry current. Messages are
// not fetched here; the first fetch happens on an explicit switch.
func (c *Controller) Init(ctx context.Context) error {
	remote, err := c.api.FetchConversations(ctx)
	if err != nil {
		return err
	}
	if len(remote) == 0 {
		c.log.Warnf("controller: no conversations")
		return nil
	}
	conversations := make([]*types.Conversation, 0, len(remote))
	for _, rc := range remote {
		conversations = append(conversations, types.NewConversation(rc))
	}
	c.state.SetConversations(conversations)
	return c.state.SetCurrentConversation(conversations[0].ID)
}

// Run services listener events and UI commands until ctx is cancelled or
// both inputs are gone. Neither input has priority; no command is dropped.
// Backend failures are logged and isolated per request; they never end the
// loop.
func (c *Controller) Run(ctx context.Context) {
	events := c.events
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				// Listener died or was torn down. Keep serving UI
				// commands; sends and switches still work.
				c.log.Errorf("controller: listener stream closed")
				events = nil
				continue
			}
			c.handleEvent(event)
		case command := <-c.commands:
			c.handleCommand(ctx, command)
		}
	}
}

func (c *Controller) handleEvent(event types.ListenerEvent) {
	msg := event.Message
	if err := c.state.InsertMessage(msg.ConversationID, msg); err != nil {
		c.log.Warnf("controller: message for %s: %v", msg.ConversationID, err)
	}
}

func (c *Controller) handleCommand(ctx context.Context, command types.UICommand) {
	switch cmd := command.(type) {
	case types.SendMessage:
		c.sendToCurrent(ctx, cmd.Body)
	case types.SwitchConversation:
		c.switchTo(ctx, cmd.ConversationID)
	default:
		c.log.Warnf("controller: unhandled command %T", command)
	}
}

func (c *Controller) sendToCurrent(ctx context.Context, body string) {
	current, ok := c.state.CurrentConversation()
	if !ok {
		c.log.Warnf("controller: send with no current conversation")
		return
	}
	if err := c.api.SendMessage(ctx, current.Channel, body); err != nil {
		c.log.Errorf("controller: send to %s: %v", current.ID, err)
	}
}

// switchTo makes the target conversation current, fetching its history the
// first time it is visited. The fetched flag flips before the fetch is
// issued so a repeat switch never fetches twice; a failed fetch is logged
// and the switch completes anyway (there is no retry).
func (c *Controller) switchTo(ctx context.Context, conversationID string) {
	target, ok := c.state.Conversation(conversationID)
	if !ok {
		c.log.Warnf("controller: switch to %s: %v", conversationID, state.ErrUnknownConversation)
		return
	}
	if !target.Fetched {
		if err := c.state.MarkFetched(conversationID); err != nil {
			c.log.Warnf("controller: mark fetched %s: %v", conversationID, err)
		}
		batch, err := c.api.FetchMessages(ctx, target.Channel, c.fetchCount)
		if err != nil {
			c.log.Errorf("controller: fetch messages for %s: %v", conversationID, err)
		} else if err := c.state.MergeMessages(conversationID, batch); err != nil {
			c.log.Warnf("controller: merge messages for %s: %v", conversationID, err)
		}
	}
	if err := c.state.SetCurrentConversation(conversationID); err != nil {
		c.log.Errorf("controller: switch to %s: %v", conversationID, err)
	}
}
