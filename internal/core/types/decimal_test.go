package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole string
		want        string
	}{
		{"margin", "150", "600", "25"},
		{"rounded", "1", "3", "33.33"},
		{"zero revenue", "-40", "0", "0"},
		{"negative revenue", "-40", "-200", "0"},
		{"loss on positive revenue", "-50", "200", "-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(MustMoney(tt.part), MustMoney(tt.whole))
			assert.True(t, MustMoney(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestShare(t *testing.T) {
	assert.True(t, MustMoney("300").Equal(Share(MustMoney("480"), MustMoney("320"), MustMoney("512"))))
	assert.True(t, Share(MustMoney("480"), MustMoney("1"), Zero()).IsZero())
}

func TestQuantity(t *testing.T) {
	q := NewQuantityFromFloat64(0.25)
	assert.Equal(t, int64(2500), q.Int64Scaled())
	assert.Equal(t, "0.7500", q.MulUnits(3).String())
	assert.Equal(t, "-1.5000", NewQuantityFromFloat64(-1.5).String())
	assert.Equal(t, Quantity(20_000), NewQuantityFromUnits(2))
}
