package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafka(t *testing.T) {
	k := NewKafka([]string{"k1:9092"}, "trades.executed")

	assert.Equal(t, "trades.executed", k.writer.Topic)
	assert.Equal(t, "k1:9092", k.writer.Addr.String())
	assert.IsType(t, &kafka.Hash{}, k.writer.Balancer)
	assert.Equal(t, kafka.RequireOne, k.writer.RequiredAcks)
	require.NoError(t, k.Close())
}

func TestMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	event := TradeExecuted{
		EventID:    "5b1f0c2e-0000-4000-8000-000000000001",
		UserID:     42,
		Symbol:     "AAPL",
		Name:       "Apple Inc.",
		Shares:     -4,
		SharePrice: decimal.RequireFromString("120.50"),
		CashAfter:  decimal.RequireFromString("9482.00"),
		OccurredAt: at,
	}

	msg, err := message(event)
	require.NoError(t, err)
	assert.Equal(t, "42", string(msg.Key))
	assert.True(t, msg.Time.Equal(at))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, event.EventID, payload["event_id"])
	assert.Equal(t, float64(42), payload["user_id"])
	assert.Equal(t, "AAPL", payload["symbol"])
	assert.Equal(t, float64(-4), payload["shares"])
	assert.Equal(t, "120.5", payload["share_price"])
	assert.Equal(t, "9482", payload["cash_after"])
	assert.Equal(t, "2024-03-01T09:30:00Z", payload["occurred_at"])

	var back TradeExecuted
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.True(t, back.SharePrice.Equal(event.SharePrice))
}
