package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/events"
)

func TestSubscribeAndPublishRoundTrip(t *testing.T) {
	b := New()
	require.NoError(t, b.Start())
	defer b.Stop()

	got := make(chan string, 1)
	b.Subscribe("listener-a", BlockGenerate, func(data events.EventData) {
		got <- "fired"
	})

	b.Publish(BlockGenerate, nil)

	select {
	case msg := <-got:
		assert.Equal(t, "fired", msg)
	case <-time.After(time.Second):
		t.Fatal("listener was never notified")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	require.NoError(t, b.Start())
	defer b.Stop()

	got := make(chan string, 1)
	b.Subscribe("listener-b", UndoBlock, func(data events.EventData) {
		got <- "fired"
	})
	b.Unsubscribe("listener-b", UndoBlock)
	b.Publish(UndoBlock, nil)

	select {
	case <-got:
		t.Fatal("listener fired after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}
