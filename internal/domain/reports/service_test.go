package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/apperror"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
)

type snapshotTx struct {
	readOnly int
}

func (s *snapshotTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *snapshotTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	s.readOnly++
	return fn(ctx)
}

type stubRepo struct {
	orders    []PaidOrder
	settled   types.Money
	costs     types.Money
	customers []CreditCustomer
	err       error

	from, to time.Time
}

func (r *stubRepo) ListPaidOrders(_ context.Context, from, to time.Time) ([]PaidOrder, error) {
	r.from, r.to = from, to
	return r.orders, r.err
}

func (r *stubRepo) SumDebtSettlements(context.Context, time.Time, time.Time) (types.Money, error) {
	return r.settled, nil
}

func (r *stubRepo) SumPurchaseCosts(context.Context, time.Time, time.Time) (types.Money, error) {
	return r.costs, nil
}

func (r *stubRepo) ListCustomersWithDebt(context.Context) ([]CreditCustomer, error) {
	return r.customers, r.err
}

func newTestService(repo Repository) (*Service, *snapshotTx) {
	txm := &snapshotTx{}
	svc := NewService(repo, txm, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC) }
	return svc, txm
}

func TestService_Sales(t *testing.T) {
	repo := &stubRepo{
		orders: []PaidOrder{{
			ID:            id.New(),
			TotalAmount:   money("250"),
			CashAmount:    money("250"),
			PaymentMethod: "CASH",
			Items:         []PaidItem{line("BAKERY", "Bun", id.New(), 5, "50")},
		}},
		settled: money("40"),
	}
	svc, txm := newTestService(repo)

	r, err := svc.Sales(context.Background(), "2024-01-05", "2024-01-05")
	require.NoError(t, err)

	assert.Equal(t, 1, txm.readOnly)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), repo.from)
	assert.Equal(t, time.Date(2024, 1, 5, 23, 59, 59, 999_000_000, time.UTC), repo.to)
	assertMoney(t, "250", r.Summary.NetRevenue)
	assertMoney(t, "40", r.Summary.TotalDebtSettled)
	assertMoney(t, "250", r.ByDepartment[DeptBakery].Cash)
}

func TestService_SalesBadDate(t *testing.T) {
	svc, txm := newTestService(&stubRepo{})

	_, err := svc.Sales(context.Background(), "not-a-date", "")
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 0, txm.readOnly)
}

func TestService_SalesStorageError(t *testing.T) {
	svc, _ := newTestService(&stubRepo{err: errors.New("connection reset")})

	_, err := svc.Sales(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestService_Profit(t *testing.T) {
	repo := &stubRepo{
		orders: []PaidOrder{
			{TotalAmount: money("1200"), DiscountAmount: money("200"), PaymentMethod: "ONLINE"},
		},
		costs: money("400"),
	}
	svc, _ := newTestService(repo)

	p, err := svc.Profit(context.Background(), "", "")
	require.NoError(t, err)

	assertMoney(t, "1000", p.Financials.Revenue)
	assertMoney(t, "600", p.Financials.Profit)
	assertMoney(t, "60", p.Financials.ProfitMargin)
	assert.Equal(t, time.Date(2023, 12, 21, 0, 0, 0, 0, time.UTC), p.Period.StartDate)
}

func TestService_Credit(t *testing.T) {
	repo := &stubRepo{customers: []CreditCustomer{
		{ID: id.New(), FullName: "Gita", TotalDue: money("900")},
		{ID: id.New(), FullName: "Bikash", TotalDue: money("100")},
	}}
	svc, _ := newTestService(repo)

	s, err := svc.Credit(context.Background())
	require.NoError(t, err)
	assertMoney(t, "1000", s.TotalOutstanding)
	assert.Equal(t, "Gita", s.Customers[0].FullName)
}
