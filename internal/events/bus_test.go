package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_TypedSubscription(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got []*Event
	bus.Subscribe(TrialsRecorded, func(e *Event) { got = append(got, e) })

	bus.Publish(&TrialsRecordedData{SessionID: "s1", Count: 10, Total: 10})
	bus.Publish(&SessionClosedData{SessionID: "s1"})

	require.Len(t, got, 1)
	assert.Equal(t, TrialsRecorded, got[0].Type)
	data, ok := got[0].Data.(*TrialsRecordedData)
	require.True(t, ok)
	assert.Equal(t, 10, data.Count)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var types []EventType
	bus.SubscribeAll(func(e *Event) { types = append(types, e.Type) })

	bus.Publish(&SessionCreatedData{SessionID: "s1", Kind: "singlet", Mode: "joint"})
	bus.Publish(&StateRepreparedData{SessionID: "s1", Kind: "up", Tick: 1})
	bus.Publish(&DirectionChangedData{SessionID: "s1", Subsystem: "A"})

	assert.Equal(t, []EventType{SessionCreated, StateReprepared, DirectionChanged}, types)
}

func TestEventData_Types(t *testing.T) {
	cases := map[EventType]EventData{
		StateReprepared:  &StateRepreparedData{},
		TrialsRecorded:   &TrialsRecordedData{},
		DirectionChanged: &DirectionChangedData{},
		SessionCreated:   &SessionCreatedData{},
		SessionClosed:    &SessionClosedData{},
	}
	for want, data := range cases {
		assert.Equal(t, want, data.EventType())
	}
}
