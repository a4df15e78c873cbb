// Package ui renders the chat session: a conversation list on the left, the
// current conversation's messages on the right, and an input line at the
// bottom. It consumes state notifications through the Observer and emits
// UI commands to the controller.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

const (
	uiEventBuffer = 512
	listWidth     = 26
)

type asyncMsg struct {
	Event tea.Msg
}

type convEntry struct {
	ID     string
	Name   string
	Unread bool
}

type Options struct {
	Commands chan<- types.UICommand
	Theme    Theme
	Log      *chatlog.Logger
}

type Model struct {
	commands chan<- types.UICommand
	events   chan asyncMsg
	theme    Theme
	log      *chatlog.Logger

	width  int
	height int

	input    textinput.Model
	viewport viewport.Model

	convs      []convEntry
	cursor     int
	activeID   string
	activeName string

	// messages of the active conversation, newest first.
	messages []types.Message

	listFocused bool
	quitting    bool
}

func NewModel(opts Options) *Model {
	inp := textinput.New()
	inp.Placeholder = "Type a message…"
	inp.Prompt = "› "
	inp.CharLimit = 0
	inp.Focus()

	vp := viewport.New(0, 0)
	vp.SetContent("")

	return &Model{
		commands: opts.Commands,
		events:   make(chan asyncMsg, uiEventBuffer),
		theme:    opts.Theme,
		log:      opts.Log,
		input:    inp,
		viewport: vp,
	}
}

// Observer returns the state observer feeding this model. Register it
// before the controller starts mutating state.
func (m *Model) Observer() *Observer {
	return &Observer{events: m.events}
}

func waitEventCmd(ch <-chan asyncMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m *Model) issueCmd(command types.UICommand) tea.Cmd {
	commands := m.commands
	return func() tea.Msg {
		commands <- command
		return nil
	}
}

func (m *Model) Init() tea.Cmd {
	return waitEventCmd(m.events)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderMessages()
		return m, nil
	case asyncMsg:
		m.handleStateEvent(msg.Event)
		return m, waitEventCmd(m.events)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleStateEvent(event tea.Msg) {
	switch event := event.(type) {
	case conversationsAddedMsg:
		m.convs = event.Entries
		if m.cursor >= len(m.convs) {
			m.cursor = 0
		}
	case conversationChangedMsg:
		m.log.Debugf("ui: showing %s", event.Entry.Name)
		m.activeID = event.Entry.ID
		m.activeName = event.Entry.Name
		m.messages = event.Messages
		m.markRead(event.Entry.ID)
		m.syncCursor()
		m.renderMessages()
		m.viewport.GotoBottom()
	case messageAddedMsg:
		if event.Active && event.ConversationID == m.activeID {
			m.messages = append([]types.Message{event.Message}, m.messages...)
			m.renderMessages()
			m.viewport.GotoBottom()
			return
		}
		m.markUnread(event.ConversationID)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.listFocused = !m.listFocused
		if m.listFocused {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil
	case "ctrl+n":
		return m, m.switchBy(1)
	case "ctrl+p":
		return m, m.switchBy(-1)
	}

	if m.listFocused {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.convs)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if m.cursor >= 0 && m.cursor < len(m.convs) {
				return m, m.issueCmd(types.SwitchConversation{ConversationID: m.convs[m.cursor].ID})
			}
			return m, nil
		}
		return m, nil
	}

	if msg.String() == "enter" {
		body := strings.TrimSpace(m.input.Value())
		if body == "" {
			return m, nil
		}
		m.input.SetValue("")
		return m, m.issueCmd(types.SendMessage{Body: body})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// switchBy cycles the active conversation forward or backward in list
// order, wrapping at the ends.
func (m *Model) switchBy(step int) tea.Cmd {
	if len(m.convs) == 0 {
		return nil
	}
	index := m.activeIndex()
	index = (index + step + len(m.convs)) % len(m.convs)
	m.cursor = index
	return m.issueCmd(types.SwitchConversation{ConversationID: m.convs[index].ID})
}

func (m *Model) activeIndex() int {
	for i, entry := range m.convs {
		if entry.ID == m.activeID {
			return i
		}
	}
	return 0
}

func (m *Model) syncCursor() {
	m.cursor = m.activeIndex()
}

func (m *Model) markUnread(conversationID string) {
	for i := range m.convs {
		if m.convs[i].ID == conversationID {
			m.convs[i].Unread = true
			return
		}
	}
}

func (m *Model) markRead(conversationID string) {
	for i := range m.convs {
		if m.convs[i].ID == conversationID {
			m.convs[i].Unread = false
			return
		}
	}
}

func (m *Model) resize() {
	messageWidth := m.width - listWidth - 1
	if messageWidth < 10 {
		messageWidth = 10
	}
	// One row for the title bar, one for the input line.
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.viewport.Width = messageWidth
	m.viewport.Height = bodyHeight
	m.input.Width = m.width - 4
}
