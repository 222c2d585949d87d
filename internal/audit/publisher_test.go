package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loot/internal/platform/kafka/producer"
)

func TestPublisher_SyncEmitStampsEvent(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), Event{
		Action:   string(ActionBagClaimed),
		TokenID:  "5",
		Owner:    "0x00000000000000000000000000000000000000aa",
		Channel:  "public",
		Decision: DecisionIssued,
	})
	require.NoError(t, err)

	events, err := store.ListByToken(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.Equal(t, string(ActionBagClaimed), events[0].Action)

	other, err := store.ListByToken(context.Background(), "6")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, pub.Emit(context.Background(), Event{Action: string(ActionBagClaimed), TokenID: id}))
	}
	pub.Close()

	assert.Len(t, store.All(), 3)
	store.Clear()
	assert.Empty(t, store.All())
}

type fakeProducer struct {
	messages []*producer.Message
	err      error
}

func (f *fakeProducer) Produce(_ context.Context, msg *producer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestKafkaStore_Append(t *testing.T) {
	fp := &fakeProducer{}
	store := NewKafkaStore(fp, "loot.bag-events")

	err := store.Append(context.Background(), Event{ID: "e1", Action: string(ActionBagClaimed), TokenID: "7778"})
	require.NoError(t, err)
	require.Len(t, fp.messages, 1)

	msg := fp.messages[0]
	assert.Equal(t, "loot.bag-events", msg.Topic)
	assert.Equal(t, []byte("7778"), msg.Key)
	assert.Equal(t, string(ActionBagClaimed), msg.Headers["action"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "e1", decoded.ID)
	assert.Equal(t, "7778", decoded.TokenID)
}

func TestKafkaStore_PropagatesProducerError(t *testing.T) {
	store := NewKafkaStore(&fakeProducer{err: errors.New("broker down")}, "t")
	err := store.Append(context.Background(), Event{TokenID: "1"})
	assert.ErrorContains(t, err, "broker down")
}
