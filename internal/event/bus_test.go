package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"document.line.altered", "document.line.altered", true},
		{"document.line.altered", "document.line.*", true},
		{"document.line.altered", "document.*", false},
		{"document.line.altered", "document.**", true},
		{"document.modified", "document.**", true},
		{"document", "document.**", true},
		{"document.line.altered", "**.altered", true},
		{"document.line.altered", "*.line.*", true},
		{"document.line.added", "document.line.altered", false},
		{"spell.refresh", "document.**", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestTopicValid(t *testing.T) {
	assert.True(t, Topic("document.line").Valid())
	assert.False(t, Topic("").Valid())
	assert.False(t, Topic("document..line").Valid())
	assert.False(t, Topic(".document").Valid())
}

func TestBusPublishOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	_, err := bus.Subscribe(TopicDocumentAll, func(_ context.Context, e any) error {
		got = append(got, "all:"+e.(TopicProvider).EventTopic().String())
		return nil
	})
	require.NoError(t, err)
	_, err = Subscribe(bus, TopicLineAltered, func(e Event[LineAltered]) {
		got = append(got, "altered")
		assert.Equal(t, 3, e.Payload.Diff)
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicLineAltered, LineAltered{Line: 1, Diff: 3}, "doc")))
	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicModified, Modified{Modified: true}, "doc")))

	assert.Equal(t, []string{"all:document.line.altered", "altered", "all:document.modified"}, got)
	assert.Equal(t, uint64(2), bus.Stats().EventsPublished)
	assert.Equal(t, 2, bus.Stats().Subscribers)
}

func TestBusTypedSubscribeIgnoresOtherPayloads(t *testing.T) {
	bus := NewBus()
	calls := 0
	_, err := Subscribe(bus, TopicDocumentAll, func(Event[Modified]) { calls++ })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicLineAdded, LineAdded{Line: 2}, "")))
	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, "")))
	assert.Equal(t, 1, calls)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub, err := bus.Subscribe(TopicModified, func(context.Context, any) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, TopicModified, sub.Topic())
	assert.NotEmpty(t, sub.ID())

	require.NoError(t, bus.Unsubscribe(sub))
	assert.ErrorIs(t, bus.Unsubscribe(sub), ErrSubscriptionNotFound)

	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, "")))
	assert.Zero(t, calls)
}

func TestBusRejects(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(TopicModified, nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = bus.Subscribe("", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)

	assert.ErrorIs(t, bus.Publish(context.Background(), "not an event"), ErrInvalidEvent)
}

func TestBusPause(t *testing.T) {
	bus := NewBus()
	calls := 0
	_, err := bus.Subscribe(TopicModified, func(context.Context, any) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	bus.Pause()
	assert.True(t, bus.IsPaused())
	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, "")))
	assert.Zero(t, calls)

	bus.Resume()
	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, "")))
	assert.Equal(t, 1, calls)
}

func TestBusHandlerPanicRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := NewBus(WithLogger(zap.New(core)))

	reached := false
	_, err := bus.Subscribe(TopicModified, func(context.Context, any) error { panic("boom") })
	require.NoError(t, err)
	_, err = bus.Subscribe(TopicModified, func(context.Context, any) error {
		reached = true
		return nil
	})
	require.NoError(t, err)

	err = bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerPanic)

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.True(t, reached)
	assert.Equal(t, 1, logs.FilterMessage("event handler panicked").Len())
	assert.Equal(t, uint64(1), bus.Stats().HandlerPanics)
}

func TestBusHandlerErrorsJoined(t *testing.T) {
	bus := NewBus()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = bus.Subscribe(TopicModified, func(context.Context, any) error { return errA })
	_, _ = bus.Subscribe(TopicModified, func(context.Context, any) error { return errB })

	err := bus.Publish(context.Background(), NewEvent(TopicModified, Modified{}, ""))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, uint64(2), bus.Stats().HandlerErrors)
}

func TestNewEventMetadata(t *testing.T) {
	e := NewEvent(TopicDisposed, Disposed{}, "doc-1")
	assert.Equal(t, "doc-1", e.Metadata.Source)
	assert.NotEmpty(t, e.Metadata.ID)
	assert.False(t, e.Metadata.Timestamp.IsZero())
	assert.Equal(t, e.Metadata, e.EventMetadata())
}
