package reports

import (
	"context"
	"fmt"
	"time"

	"restopos/internal/core/apperror"
	"restopos/internal/core/tx"
	"restopos/internal/core/types"
)

// Service builds reports from a single consistent snapshot per call.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	location  *time.Location
	now       func() time.Time
}

// NewService creates a reports service. Calendar days are interpreted in loc.
func NewService(repo Repository, txManager tx.ReadOnlyManager, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, txManager: txManager, location: loc, now: time.Now}
}

// Period parses an optional date range.
func (s *Service) Period(start, end string) (Period, error) {
	return ParseDateRange(start, end, s.now(), s.location)
}

// Sales returns revenue, payment-method and department breakdowns.
func (s *Service) Sales(ctx context.Context, start, end string) (*SalesReport, error) {
	period, err := s.Period(start, end)
	if err != nil {
		return nil, err
	}

	var (
		orders  []PaidOrder
		settled types.Money
	)
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if orders, err = s.repo.ListPaidOrders(ctx, period.StartDate, period.EndDate); err != nil {
			return fmt.Errorf("list paid orders: %w", err)
		}
		if settled, err = s.repo.SumDebtSettlements(ctx, period.StartDate, period.EndDate); err != nil {
			return fmt.Errorf("sum debt settlements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internalize(err)
	}

	return AggregateSales(period, orders, settled), nil
}

// Profit returns net revenue less purchase costs.
func (s *Service) Profit(ctx context.Context, start, end string) (*ProfitReport, error) {
	period, err := s.Period(start, end)
	if err != nil {
		return nil, err
	}

	var (
		orders []PaidOrder
		costs  types.Money
	)
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if orders, err = s.repo.ListPaidOrders(ctx, period.StartDate, period.EndDate); err != nil {
			return fmt.Errorf("list paid orders: %w", err)
		}
		if costs, err = s.repo.SumPurchaseCosts(ctx, period.StartDate, period.EndDate); err != nil {
			return fmt.Errorf("sum purchase costs: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Internalize(err)
	}

	sales := AggregateSales(period, orders, types.Zero())
	return ComputeProfit(period, sales.Summary.NetRevenue, costs), nil
}

// Credit returns all customers with outstanding debt.
func (s *Service) Credit(ctx context.Context) (*CreditSummary, error) {
	var customers []CreditCustomer
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		customers, err = s.repo.ListCustomersWithDebt(ctx)
		return err
	})
	if err != nil {
		return nil, apperror.Internalize(fmt.Errorf("list customers with debt: %w", err))
	}
	return SummarizeCredit(customers), nil
}
