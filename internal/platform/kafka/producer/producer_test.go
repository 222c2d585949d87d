package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, splitBrokers(""))
}

func TestNew_RequiresBrokers(t *testing.T) {
	p, err := New(Config{Brokers: " , "}, nil)
	require.Error(t, err)
	assert.Nil(t, p)
}

func TestToRecord(t *testing.T) {
	rec := toRecord(&Message{
		Topic:   "loot.bag-events",
		Key:     []byte("5"),
		Value:   []byte(`{"action":"bag_claimed"}`),
		Headers: map[string]string{"event": "bag_claimed"},
	})
	assert.Equal(t, "loot.bag-events", rec.Topic)
	assert.Equal(t, []byte("5"), rec.Key)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event", rec.Headers[0].Key)
	assert.Equal(t, []byte("bag_claimed"), rec.Headers[0].Value)
}
