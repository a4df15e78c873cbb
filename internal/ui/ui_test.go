package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel(Options{
		Commands: make(chan types.UICommand, 8),
		Theme:    Theme{Accent: "6", Unread: "3", Dim: "8"},
	})
	m.width = 80
	m.height = 24
	m.resize()
	return m
}

func textMessage(conversationID, body string) types.Message {
	return types.Message{
		ConversationID: conversationID,
		Sender:         types.Sender{Username: "alice", DeviceName: "laptop"},
		Content: types.MessageContent{
			Type: types.ContentText,
			Text: &types.MessageBody{Body: body},
		},
	}
}

func TestConversationsAddedPopulatesList(t *testing.T) {
	m := newTestModel(t)
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta#general"},
	}})

	if len(m.convs) != 2 || m.convs[1].Name != "beta#general" {
		t.Fatalf("convs = %+v", m.convs)
	}
}

func TestConversationChangedActivatesAndClearsUnread(t *testing.T) {
	m := newTestModel(t)
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta", Unread: true},
	}})

	m.handleStateEvent(conversationChangedMsg{
		Entry: convEntry{ID: "b", Name: "beta"},
		Messages: []types.Message{
			textMessage("b", "newest"),
			textMessage("b", "oldest"),
		},
	})

	if m.activeID != "b" || m.activeName != "beta" {
		t.Fatalf("active = %s/%s, want b/beta", m.activeID, m.activeName)
	}
	if m.convs[1].Unread {
		t.Fatal("unread flag not cleared on switch")
	}
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	if len(m.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(m.messages))
	}
}

func TestActiveMessageAppendsInactiveMarksUnread(t *testing.T) {
	m := newTestModel(t)
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta"},
	}})
	m.handleStateEvent(conversationChangedMsg{Entry: convEntry{ID: "a", Name: "alpha"}})

	m.handleStateEvent(messageAddedMsg{
		ConversationID: "a",
		Active:         true,
		Message:        textMessage("a", "live one"),
	})
	if len(m.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(m.messages))
	}

	m.handleStateEvent(messageAddedMsg{
		ConversationID: "b",
		Active:         false,
		Message:        textMessage("b", "background"),
	})
	if len(m.messages) != 1 {
		t.Fatal("inactive message leaked into the active pane")
	}
	if !m.convs[1].Unread {
		t.Fatal("inactive conversation not marked unread")
	}
}

func TestEnterSendsTrimmedInput(t *testing.T) {
	commands := make(chan types.UICommand, 8)
	m := NewModel(Options{Commands: commands, Theme: Theme{}})
	m.width = 80
	m.height = 24
	m.resize()

	m.input.SetValue("  hello world  ")
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	cmd() // runs the blocking send on this goroutine

	select {
	case got := <-commands:
		send, ok := got.(types.SendMessage)
		if !ok || send.Body != "hello world" {
			t.Fatalf("command = %+v, want SendMessage{hello world}", got)
		}
	default:
		t.Fatal("no command issued")
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
}

func TestEnterOnEmptyInputSendsNothing(t *testing.T) {
	commands := make(chan types.UICommand, 8)
	m := NewModel(Options{Commands: commands, Theme: Theme{}})
	m.input.SetValue("   ")
	if _, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("blank input should not produce a command")
	}
}

func TestListSelectionIssuesSwitch(t *testing.T) {
	commands := make(chan types.UICommand, 8)
	m := NewModel(Options{Commands: commands, Theme: Theme{}})
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta"},
	}})

	m.handleKey(tea.KeyMsg{Type: tea.KeyTab}) // focus the list
	m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on list produced no command")
	}
	cmd()

	got := <-commands
	switchCmd, ok := got.(types.SwitchConversation)
	if !ok || switchCmd.ConversationID != "b" {
		t.Fatalf("command = %+v, want SwitchConversation{b}", got)
	}
}

func TestCtrlNCyclesConversations(t *testing.T) {
	commands := make(chan types.UICommand, 8)
	m := NewModel(Options{Commands: commands, Theme: Theme{}})
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta"},
	}})
	m.activeID = "b"

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlN})
	if cmd == nil {
		t.Fatal("ctrl+n produced no command")
	}
	cmd()

	got := <-commands
	switchCmd, ok := got.(types.SwitchConversation)
	if !ok || switchCmd.ConversationID != "a" {
		t.Fatalf("command = %+v, want wrap to a", got)
	}
}

func TestViewListMarksActiveAndUnread(t *testing.T) {
	m := newTestModel(t)
	m.handleStateEvent(conversationsAddedMsg{Entries: []convEntry{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "beta", Unread: true},
	}})
	m.activeID = "a"

	list := m.viewList()
	if !strings.Contains(list, "* alpha") {
		t.Fatalf("active marker missing:\n%s", list)
	}
	if !strings.Contains(list, "beta •") {
		t.Fatalf("unread marker missing:\n%s", list)
	}
}

func TestRenderMessagesShowsPlaceholderForNonText(t *testing.T) {
	m := newTestModel(t)
	m.messages = []types.Message{
		{
			ConversationID: "a",
			Sender:         types.Sender{Username: "bob"},
			Content:        types.MessageContent{Type: types.ContentReaction},
		},
	}
	m.renderMessages()

	if view := m.viewport.View(); !strings.Contains(view, "[reaction]") {
		t.Fatalf("placeholder missing:\n%s", view)
	}
}
