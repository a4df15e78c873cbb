// Package gateway drives the external keybase binary over subprocess stdio:
// one short-lived process per request command, plus one long-lived listener
// process that pushes chat events for the whole session.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"unicode/utf8"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
)

const logPreviewBytes = 400

// Gateway executes one JSON command per subprocess invocation. Each call is
// fully isolated: no pooling, no reuse, no retry.
type Gateway struct {
	bin  string
	args []string
	log  *chatlog.Logger
}

func New(bin string, args []string, log *chatlog.Logger) *Gateway {
	return &Gateway{bin: bin, args: args, log: log}
}

// Submit spawns a fresh subprocess, writes the serialized command to its
// stdin, closes stdin, reads everything it prints until it exits, and
// returns the output parsed as one JSON document. It blocks for the full
// duration of the subprocess.
func (g *Gateway) Submit(ctx context.Context, command Command) (json.RawMessage, error) {
	payload, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("encode %s command: %w", command.Method, err)
	}

	g.log.Logf(chatlog.KindAPI, "-> %s", chatlog.Preview(string(payload), logPreviewBytes))

	cmd := exec.CommandContext(ctx, g.bin, g.args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := chatlog.Preview(stderr.String(), logPreviewBytes); msg != "" {
			g.log.Errorf("%s command failed: %v: %s", command.Method, err, msg)
			return nil, &TransportError{Op: command.Method, Err: fmt.Errorf("%w: %s", err, msg)}
		}
		return nil, &TransportError{Op: command.Method, Err: err}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if !utf8.Valid(out) {
		return nil, &ProtocolError{Op: command.Method, Detail: "output is not valid UTF-8"}
	}
	if !json.Valid(out) {
		return nil, &ProtocolError{
			Op:     command.Method,
			Detail: fmt.Sprintf("output is not valid JSON: %s", chatlog.Preview(string(out), logPreviewBytes)),
		}
	}

	g.log.Logf(chatlog.KindAPI, "<- %s", chatlog.Preview(string(out), logPreviewBytes))
	return json.RawMessage(out), nil
}
