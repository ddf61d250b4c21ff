package tables

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/apperror"
)

type memRepo struct {
	mu     sync.Mutex
	byCode map[string]*Table
}

func newMemRepo(seed ...*Table) *memRepo {
	r := &memRepo{byCode: map[string]*Table{}}
	for _, t := range seed {
		r.byCode[t.TableCode] = t
	}
	return r
}

func (r *memRepo) GetByCode(_ context.Context, code string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byCode[code], nil
}

func (r *memRepo) CreateIfAbsent(_ context.Context, t *Table) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byCode[t.TableCode]; ok {
		return existing, nil
	}
	r.byCode[t.TableCode] = t
	return t, nil
}

func TestResolve_DineIn(t *testing.T) {
	ctx := context.Background()
	t5 := &Table{TableCode: "T5", TableType: TypePhysical}
	r := NewResolver(newMemRepo(t5))

	got, err := r.Resolve(ctx, " T5 ", CustomerDineIn)
	require.NoError(t, err)
	assert.Same(t, t5, got)

	_, err = r.Resolve(ctx, "", CustomerDineIn)
	assert.True(t, apperror.IsValidation(err))

	_, err = r.Resolve(ctx, "T99", CustomerDineIn)
	assert.True(t, apperror.IsNotFound(err))
}

func TestResolve_WalkInWithoutCodeIsAlwaysNew(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	r := NewResolver(repo)

	a, err := r.Resolve(ctx, "", CustomerWalkIn)
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "", CustomerWalkIn)
	require.NoError(t, err)

	assert.NotEqual(t, a.TableCode, b.TableCode)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, TypeWalkIn, a.TableType)
	assert.Contains(t, a.TableCode, "WALK-IN-")
	assert.Len(t, repo.byCode, 2)
}

func TestResolve_VirtualCodeIsReused(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	r := NewResolver(repo)

	a, err := r.Resolve(ctx, "W-7", CustomerWalkIn)
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "W-7", CustomerWalkIn)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	online, err := r.Resolve(ctx, "", CustomerOnline)
	require.NoError(t, err)
	assert.Equal(t, OnlineTableCode, online.TableCode)
	assert.Equal(t, TypeOnline, online.TableType)
	assert.NotEmpty(t, online.QRToken)
}

func TestParseCustomerType(t *testing.T) {
	tests := []struct {
		in      string
		want    CustomerType
		wantErr bool
	}{
		{"", CustomerDineIn, false},
		{"walk_in", CustomerWalkIn, false},
		{"ONLINE", CustomerOnline, false},
		{"DELIVERY", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCustomerType(tt.in)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
