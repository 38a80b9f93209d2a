package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	msg, err := message(TopicOrder, "42", map[string]any{"type": "order_created", "orderID": 42})
	require.NoError(t, err)

	assert.Equal(t, TopicOrder, msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "order_created", body["type"])
	assert.EqualValues(t, 42, body["orderID"])
}

func TestMessage_Unmarshalable(t *testing.T) {
	_, err := message(TopicOrder, "1", map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), TopicUser, "k", struct{}{}))
	assert.NoError(t, p.Close())
}
