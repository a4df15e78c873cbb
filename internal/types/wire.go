package types

import (
	"encoding/json"
	"fmt"
)

// ResponseKind classifies what an API response body contained. The protocol
// carries no correlation id, so responses are recognized by shape alone.
type ResponseKind int

const (
	ResponseUnknown ResponseKind = iota
	ResponseConversationList
	ResponseMessageList
	ResponseMessageSent
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseConversationList:
		return "conversation_list"
	case ResponseMessageList:
		return "message_list"
	case ResponseMessageSent:
		return "message_sent"
	default:
		return "unknown"
	}
}

// APIResponse is the decoded {"result": ...} payload of a one-shot command.
// Exactly one of Conversations/Messages is populated depending on Kind.
type APIResponse struct {
	Kind          ResponseKind
	Conversations []RemoteConversation
	Messages      []Message
}

// DecodeAPIResponse parses a raw gateway response and classifies it by the
// keys present in the result object.
func DecodeAPIResponse(raw json.RawMessage) (APIResponse, error) {
	var envelope struct {
		Result *struct {
			Conversations *[]RemoteConversation `json:"conversations"`
			Messages      *[]MessageWrapper     `json:"messages"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return APIResponse{}, fmt.Errorf("decode api response: %w", err)
	}
	if envelope.Error != nil {
		return APIResponse{}, fmt.Errorf("api error: %s", envelope.Error.Message)
	}
	if envelope.Result == nil {
		return APIResponse{}, fmt.Errorf("api response has no result")
	}
	switch {
	case envelope.Result.Conversations != nil:
		return APIResponse{
			Kind:          ResponseConversationList,
			Conversations: *envelope.Result.Conversations,
		}, nil
	case envelope.Result.Messages != nil:
		msgs := make([]Message, 0, len(*envelope.Result.Messages))
		for _, w := range *envelope.Result.Messages {
			msgs = append(msgs, w.Msg)
		}
		return APIResponse{Kind: ResponseMessageList, Messages: msgs}, nil
	default:
		// Sends come back with an opaque result body; anything with a
		// result but no recognized collection counts as a plain ack.
		return APIResponse{Kind: ResponseMessageSent}, nil
	}
}

// ListenerEvent is one event pushed by the long-lived listener subprocess.
// The only variant the listener emits today is a chat message.
type ListenerEvent struct {
	Kind    string
	Message Message
}

// DecodeListenerEvent parses one line of listener output.
func DecodeListenerEvent(line []byte) (ListenerEvent, error) {
	var envelope struct {
		Type string         `json:"type"`
		Msg  MessageWrapper `json:"msg"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return ListenerEvent{}, fmt.Errorf("decode listener event: %w", err)
	}
	if envelope.Type != "chat" {
		return ListenerEvent{}, fmt.Errorf("unknown listener event type %q", envelope.Type)
	}
	return ListenerEvent{Kind: envelope.Type, Message: envelope.Msg.Msg}, nil
}
