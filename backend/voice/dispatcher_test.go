package voice

import (
	"context"
	"testing"

	"mentora/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewDispatcher()

	var got []Event
	d.Subscribe(func(e Event) { got = append(got, e) })

	d.Publish(Event{Type: EventCallStart, SessionID: "s1"})
	d.Publish(Event{Type: EventCallEnd, SessionID: "s1"})

	require.Len(t, got, 2)
	assert.Equal(t, EventCallStart, got[0].Type)
	assert.Equal(t, EventCallEnd, got[1].Type)
}

func TestDispatcherUnsubscribeStopsDelivery(t *testing.T) {
	d := NewDispatcher()

	var calls int
	token := d.Subscribe(func(Event) { calls++ })

	d.Publish(Event{Type: EventSpeechStart})
	d.Unsubscribe(token)
	d.Publish(Event{Type: EventSpeechEnd})

	assert.Equal(t, 1, calls)
}

func TestDispatcherUnsubscribeFromWithinHandler(t *testing.T) {
	d := NewDispatcher()

	var calls int
	var token int
	token = d.Subscribe(func(Event) {
		calls++
		d.Unsubscribe(token)
	})

	d.Publish(Event{Type: EventMessage})
	d.Publish(Event{Type: EventMessage})

	assert.Equal(t, 1, calls)
}

type memoryAppender struct {
	messages []models.ChatMessage
}

func (m *memoryAppender) Append(ctx context.Context, message *models.ChatMessage) error {
	m.messages = append(m.messages, *message)
	return nil
}

func TestRecorderPersistsFinalTranscriptsOnly(t *testing.T) {
	store := &memoryAppender{}
	recorder := NewRecorder(store, zap.NewNop())

	d := NewDispatcher()
	d.Subscribe(recorder.Handle)

	d.Publish(Event{Type: EventCallStart, SessionID: "s1"})
	d.Publish(Event{Type: EventMessage, SessionID: "s1", Role: models.RoleUser, Transcript: "Hel", Final: false})
	d.Publish(Event{Type: EventMessage, SessionID: "s1", Role: models.RoleUser, Transcript: "Hello there", Final: true})
	d.Publish(Event{Type: EventMessage, SessionID: "s1", Role: models.RoleAssistant, Transcript: "Hi! Ready to study?", Final: true})
	d.Publish(Event{Type: EventCallEnd, SessionID: "s1"})

	require.Len(t, store.messages, 2)
	assert.Equal(t, models.RoleUser, store.messages[0].Role)
	assert.Equal(t, "Hello there", store.messages[0].Content)
	assert.Equal(t, models.RoleAssistant, store.messages[1].Role)
	assert.Equal(t, "s1", store.messages[1].SessionID)
}
