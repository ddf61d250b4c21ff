package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_PublishesToAllAndJoinsErrors(t *testing.T) {
	var got []string
	ok := PublisherFunc(func(_ context.Context, event string, _ any) error {
		got = append(got, "ok:"+event)
		return nil
	})
	boom := errors.New("broker down")
	failing := PublisherFunc(func(_ context.Context, event string, _ any) error {
		got = append(got, "failing:"+event)
		return boom
	})

	fan := Fanout{failing, nil, ok}
	err := fan.Publish(context.Background(), OrderNew, OrderPayload{})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"failing:order:new", "ok:order:new"}, got)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, Fanout{}.Publish(context.Background(), OrderUpdated, nil))
	assert.NoError(t, Discard.Publish(context.Background(), OrderUpdated, nil))
}
