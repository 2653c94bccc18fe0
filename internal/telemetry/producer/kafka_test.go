package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship-portal/backend/internal/telemetry"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNewKafkaProducer_Disabled(t *testing.T) {
	assert.Nil(t, NewKafkaProducer(nil, "topic"))
	assert.Nil(t, NewKafkaProducer([]string{"localhost:9092"}, ""))

	var p *KafkaProducer
	assert.NoError(t, p.Emit(context.Background(), &telemetry.Event{Type: "x"}))
	assert.NoError(t, p.Close())
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "portal-session-events")
	require.NotNil(t, p)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "portal-session-events", w.Topic)
	assert.NoError(t, p.Close())
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "t"}

	err := p.Emit(context.Background(), &telemetry.Event{Type: telemetry.EventLogin, UserID: "u1", Role: "student"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("u1"), w.msgs[0].Key)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var got telemetry.Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "student", got.Role)

	require.NoError(t, p.Emit(context.Background(), &telemetry.Event{Type: telemetry.EventBootstrap}))
	assert.Nil(t, w.msgs[1].Key, "anonymous events are unkeyed")

	assert.NoError(t, p.Emit(context.Background(), nil))
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &KafkaProducer{writer: w, topic: "t"}
	assert.Error(t, p.Emit(context.Background(), &telemetry.Event{Type: "x"}))
}
