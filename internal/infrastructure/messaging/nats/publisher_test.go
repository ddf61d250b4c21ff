package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/domain/events"
)

type fakeConn struct {
	subjects []string
	bodies   [][]byte
	err      error
	drained  bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublisher_Subject(t *testing.T) {
	p := newPublisher(&fakeConn{}, "")
	assert.Equal(t, "restopos.order.new", p.Subject(events.OrderNew))
	assert.Equal(t, "restopos.order.updated", p.Subject(events.OrderUpdated))
	assert.Equal(t, "restopos.order.status", p.Subject(events.OrderStatusChanged))

	p = newPublisher(&fakeConn{}, "pos.")
	assert.Equal(t, "pos.order.new", p.Subject(events.OrderNew))
}

func TestPublisher_Publish(t *testing.T) {
	nc := &fakeConn{}
	p := newPublisher(nc, "pos")

	err := p.Publish(context.Background(), events.OrderUpdated, map[string]int{"items": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"pos.order.updated"}, nc.subjects)
	assert.JSONEq(t, `{"items":2}`, string(nc.bodies[0]))
}

func TestPublisher_Errors(t *testing.T) {
	boom := errors.New("no responders")
	p := newPublisher(&fakeConn{err: boom}, "pos")
	err := p.Publish(context.Background(), events.OrderNew, nil)
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nc := &fakeConn{}
	err = newPublisher(nc, "pos").Publish(ctx, events.OrderNew, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, nc.subjects)
}

func TestPublisher_Close(t *testing.T) {
	nc := &fakeConn{}
	require.NoError(t, newPublisher(nc, "").Close())
	assert.True(t, nc.drained)
}
