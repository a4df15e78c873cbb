package gateway

import (
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

// Command is the JSON body written to the api subprocess's stdin. Field
// order matters only for log readability; the backend keys off names.
type Command struct {
	Method string  `json:"method"`
	Params *Params `json:"params,omitempty"`
}

type Params struct {
	Options Options `json:"options"`
}

type Options struct {
	Channel    *types.Channel     `json:"channel,omitempty"`
	Pagination *Pagination        `json:"pagination,omitempty"`
	Message    *types.MessageBody `json:"message,omitempty"`
}

type Pagination struct {
	Num uint `json:"num"`
}

// ListCommand asks for all conversations visible to the logged-in user.
func ListCommand() Command {
	return Command{Method: "list"}
}

// ReadCommand asks for the most recent count messages of a channel.
func ReadCommand(channel types.Channel, count uint) Command {
	return Command{
		Method: "read",
		Params: &Params{Options: Options{
			Channel:    &channel,
			Pagination: &Pagination{Num: count},
		}},
	}
}

// SendCommand posts a text message to a channel.
func SendCommand(channel types.Channel, body string) Command {
	return Command{
		Method: "send",
		Params: &Params{Options: Options{
			Channel: &channel,
			Message: &types.MessageBody{Body: body},
		}},
	}
}
