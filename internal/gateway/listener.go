package gateway

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"sync"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

const (
	listenerEventBuffer = 64
	listenerMaxLine     = 1 << 20
)

// Listener supervises the long-lived listener subprocess and turns its
// line-delimited JSON output into discrete events on Events(). A line that
// fails to decode is logged and skipped; the stream keeps going. When the
// subprocess exits (or Close kills it) the event channel is closed.
type Listener struct {
	cmd    *exec.Cmd
	events chan types.ListenerEvent
	log    *chatlog.Logger

	done       chan struct{}
	readerDone chan struct{}
	closeOnce  sync.Once
}

// StartListener spawns the listener subprocess and begins reading it.
func StartListener(bin string, args []string, log *chatlog.Logger) (*Listener, error) {
	cmd := exec.Command(bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &TransportError{Op: "listen", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &TransportError{Op: "listen", Err: err}
	}
	log.Infof("listener process started (pid %d)", cmd.Process.Pid)

	l := &Listener{
		cmd:        cmd,
		events:     make(chan types.ListenerEvent, listenerEventBuffer),
		log:        log,
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
	go l.readLoop(stdout)
	return l, nil
}

// Events is the single-consumer stream of pushed events, delivered in the
// order the backend emitted them. Closed when the subprocess goes away.
func (l *Listener) Events() <-chan types.ListenerEvent {
	return l.events
}

func (l *Listener) readLoop(r io.Reader) {
	defer close(l.readerDone)
	defer close(l.events)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), listenerMaxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		event, err := types.DecodeListenerEvent(line)
		if err != nil {
			l.log.Warnf("listener: skipping line: %v (%s)", err, chatlog.Preview(string(line), logPreviewBytes))
			continue
		}
		l.log.Logf(chatlog.KindEvent, "listener: %s from %s in %s",
			event.Kind, event.Message.Sender.Username, event.Message.ConversationID)
		select {
		case l.events <- event:
		case <-l.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		l.log.Errorf("listener: read: %v", err)
		return
	}
	l.log.Infof("listener: stream ended")
}

// Close kills the subprocess and reaps it. Safe to call more than once and
// on every shutdown path; the expected kill error is swallowed.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		if l.cmd.Process != nil {
			_ = l.cmd.Process.Kill()
		}
		<-l.readerDone
		_ = l.cmd.Wait()
		l.log.Infof("listener process stopped")
	})
	return nil
}
