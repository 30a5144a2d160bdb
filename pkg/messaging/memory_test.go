package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerFanout(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	ctx := context.Background()

	a, err := broker.Subscribe(ctx, "events")
	require.NoError(t, err)
	b, err := broker.Subscribe(ctx, "events")
	require.NoError(t, err)
	other, err := broker.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, broker.Publish(ctx, "events", Message{Type: "ping"}))

	for _, ch := range []<-chan []byte{a, b} {
		select {
		case payload := <-ch:
			var msg Message
			require.NoError(t, json.Unmarshal(payload, &msg))
			assert.Equal(t, "ping", msg.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive message")
		}
	}

	select {
	case <-other:
		t.Fatal("message leaked to another channel")
	default:
	}
}

func TestMemoryBrokerCloseStopsDelivery(t *testing.T) {
	broker := NewMemoryBroker()
	ctx := context.Background()

	ch, err := broker.Subscribe(ctx, "events")
	require.NoError(t, err)

	require.NoError(t, broker.Close())

	_, open := <-ch
	assert.False(t, open)

	assert.Error(t, broker.Publish(ctx, "events", Message{Type: "ping"}))
	_, err = broker.Subscribe(ctx, "events")
	assert.Error(t, err)
}
