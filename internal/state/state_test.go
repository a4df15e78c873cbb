package state

import (
	"errors"
	"testing"

	"github.com/nbrendler/keybase-chat-tui/internal/types"
)

type recordingObserver struct {
	changed      []string
	addedBatches [][]*types.Conversation
	messages     []messageNote
}

type messageNote struct {
	ConversationID string
	Body           string
	Active         bool
}

func (r *recordingObserver) ConversationChanged(c *types.Conversation) {
	r.changed = append(r.changed, c.ID)
}

func (r *recordingObserver) ConversationsAdded(cs []*types.Conversation) {
	r.addedBatches = append(r.addedBatches, cs)
}

func (r *recordingObserver) MessageAdded(m types.Message, conversationID string, active bool) {
	body, _ := m.Content.BodyText()
	r.messages = append(r.messages, messageNote{
		ConversationID: conversationID,
		Body:           body,
		Active:         active,
	})
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

func conversation(id string) *types.Conversation {
	return types.NewConversation(types.RemoteConversation{
		ID:      id,
		Channel: types.Channel{Name: "room-" + id, MembersType: types.MemberTypeTeam},
	})
}

func TestInsertConversationLookup(t *testing.T) {
	s := New(nil)
	for _, id := range []string{"c1", "c2", "c3"} {
		s.InsertConversation(conversation(id))
	}
	for _, id := range []string{"c1", "c2", "c3"} {
		got, ok := s.Conversation(id)
		if !ok || got.ID != id {
			t.Fatalf("Conversation(%q) = %v, %v", id, got, ok)
		}
	}
	if _, ok := s.Conversation("nope"); ok {
		t.Fatal("lookup of unknown id succeeded")
	}
}

func TestInsertMessagePrependLaw(t *testing.T) {
	s := New(nil)
	s.InsertConversation(conversation("c1"))

	if err := s.InsertMessage("c1", textMessage("c1", "m1")); err != nil {
		t.Fatalf("insert m1: %v", err)
	}
	if err := s.InsertMessage("c1", textMessage("c1", "m2")); err != nil {
		t.Fatalf("insert m2: %v", err)
	}

	c, _ := s.Conversation("c1")
	if len(c.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(c.Messages))
	}
	first, _ := c.Messages[0].Content.BodyText()
	second, _ := c.Messages[1].Content.BodyText()
	if first != "m2" || second != "m1" {
		t.Fatalf("messages = [%s %s], want [m2 m1]", first, second)
	}
}

func TestInsertMessageUnknownConversation(t *testing.T) {
	s := New(nil)
	obs := &recordingObserver{}
	s.RegisterObserver(obs)

	err := s.InsertMessage("ghost", textMessage("ghost", "boo"))
	if !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("err = %v, want ErrUnknownConversation", err)
	}
	if len(obs.messages) != 0 {
		t.Fatal("observer fired for an unknown conversation")
	}
}

func TestInsertMessageActiveFlag(t *testing.T) {
	s := New(nil)
	obs := &recordingObserver{}
	s.RegisterObserver(obs)
	s.InsertConversation(conversation("c1"))
	s.InsertConversation(conversation("c2"))
	if err := s.SetCurrentConversation("c1"); err != nil {
		t.Fatalf("set current: %v", err)
	}

	_ = s.InsertMessage("c1", textMessage("c1", "to current"))
	_ = s.InsertMessage("c2", textMessage("c2", "to other"))

	if len(obs.messages) != 2 {
		t.Fatalf("observer got %d messages, want 2", len(obs.messages))
	}
	if !obs.messages[0].Active {
		t.Fatal("message to current conversation should be active")
	}
	if obs.messages[1].Active {
		t.Fatal("message to other conversation should not be active")
	}
}

func TestSetConversationsNotifiesOnceWithInput(t *testing.T) {
	s := New(nil)
	obs := &recordingObserver{}
	s.RegisterObserver(obs)

	batch := []*types.Conversation{conversation("c1"), conversation("c2")}
	s.SetConversations(batch)

	if len(obs.addedBatches) != 1 {
		t.Fatalf("ConversationsAdded fired %d times, want 1", len(obs.addedBatches))
	}
	got := obs.addedBatches[0]
	if len(got) != len(batch) {
		t.Fatalf("notified batch size = %d, want %d", len(got), len(batch))
	}
	for i := range batch {
		if got[i] != batch[i] {
			t.Fatalf("notified batch[%d] differs from input", i)
		}
	}
}

func TestSetCurrentConversationUnknownIsNoop(t *testing.T) {
	s := New(nil)
	obs := &recordingObserver{}
	s.RegisterObserver(obs)
	s.InsertConversation(conversation("c1"))
	if err := s.SetCurrentConversation("c1"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	obs.changed = nil

	err := s.SetCurrentConversation("ghost")
	if !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("err = %v, want ErrUnknownConversation", err)
	}
	if len(obs.changed) != 0 {
		t.Fatal("observer fired for an unknown conversation id")
	}
	current, ok := s.CurrentConversation()
	if !ok || current.ID != "c1" {
		t.Fatalf("current = %v, %v; want c1", current, ok)
	}
}

func TestSetCurrentConversationNotifies(t *testing.T) {
	s := New(nil)
	obs := &recordingObserver{}
	s.RegisterObserver(obs)
	s.InsertConversation(conversation("c1"))

	if err := s.SetCurrentConversation("c1"); err != nil {
		t.Fatalf("set current: %v", err)
	}
	if len(obs.changed) != 1 || obs.changed[0] != "c1" {
		t.Fatalf("changed = %v, want [c1]", obs.changed)
	}
}

func TestMarkFetchedIsMonotonic(t *testing.T) {
	s := New(nil)
	s.InsertConversation(conversation("c1"))

	if err := s.MarkFetched("c1"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	c, _ := s.Conversation("c1")
	if !c.Fetched {
		t.Fatal("conversation not marked fetched")
	}
	if err := s.MarkFetched("ghost"); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("err = %v, want ErrUnknownConversation", err)
	}
}

func TestObserversFireInRegistrationOrder(t *testing.T) {
	s := New(nil)
	var order []string
	s.RegisterObserver(orderObserver{name: "first", order: &order})
	s.RegisterObserver(orderObserver{name: "second", order: &order})

	s.SetConversations([]*types.Conversation{conversation("c1")})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

type orderObserver struct {
	name  string
	order *[]string
}

func (o orderObserver) ConversationChanged(*types.Conversation) {}
func (o orderObserver) ConversationsAdded([]*types.Conversation) {
	*o.order = append(*o.order, o.name)
}
func (o orderObserver) MessageAdded(types.Message, string, bool) {}
