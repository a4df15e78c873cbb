// Package client is the typed façade over the gateway: request/response
// commands with response-shape validation, plus the subscription handle for
// pushed listener events.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/gateway"
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

// ErrAlreadySubscribed is returned by Subscribe after the single listener
// stream has been handed out.
var ErrAlreadySubscribed = errors.New("listener stream already has a subscriber")

// Submitter runs one gateway command to completion. *gateway.Gateway is the
// production implementation.
type Submitter interface {
	Submit(ctx context.Context, command gateway.Command) (json.RawMessage, error)
}

// EventSource exposes the listener's pushed events. *gateway.Listener is the
// production implementation.
type EventSource interface {
	Events() <-chan types.ListenerEvent
	Close() error
}

type Client struct {
	gw       Submitter
	listener EventSource
	log      *chatlog.Logger

	mu         sync.Mutex
	subscribed bool
}

func New(gw Submitter, listener EventSource, log *chatlog.Logger) *Client {
	return &Client{gw: gw, listener: listener, log: log}
}

// FetchConversations lists every conversation visible to the user.
func (c *Client) FetchConversations(ctx context.Context) ([]types.RemoteConversation, error) {
	raw, err := c.gw.Submit(ctx, gateway.ListCommand())
	if err != nil {
		return nil, err
	}
	resp, err := types.DecodeAPIResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.Kind != types.ResponseConversationList {
		return nil, &gateway.ProtocolError{
			Op:     "list",
			Detail: "expected conversation list, got " + resp.Kind.String(),
		}
	}
	return resp.Conversations, nil
}

// FetchMessages reads the most recent count messages of a channel. A
// response that is not a message list degrades to an empty result rather
// than an error: the read command acks some channels with an opaque body.
func (c *Client) FetchMessages(ctx context.Context, channel types.Channel, count uint) ([]types.Message, error) {
	raw, err := c.gw.Submit(ctx, gateway.ReadCommand(channel, count))
	if err != nil {
		return nil, err
	}
	resp, err := types.DecodeAPIResponse(raw)
	if err != nil {
		return nil, err
	}
	if resp.Kind != types.ResponseMessageList {
		c.log.Warnf("read %s: expected message list, got %s", channel.Name, resp.Kind)
		return nil, nil
	}
	return resp.Messages, nil
}

// SendMessage posts text to a channel. Any well-formed response counts as
// success; the body is discarded.
func (c *Client) SendMessage(ctx context.Context, channel types.Channel, body string) error {
	raw, err := c.gw.Submit(ctx, gateway.SendCommand(channel, body))
	if err != nil {
		return err
	}
	if _, err := types.DecodeAPIResponse(raw); err != nil {
		return err
	}
	return nil
}

// Subscribe hands out the listener event stream. The stream supports exactly
// one subscriber; further calls fail.
func (c *Client) Subscribe() (<-chan types.ListenerEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribed {
		return nil, ErrAlreadySubscribed
	}
	c.subscribed = true
	return c.listener.Events(), nil
}

// Close tears down the listener subprocess.
func (c *Client) Close() error {
	return c.listener.Close()
}
