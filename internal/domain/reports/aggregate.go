package reports

import (
	"sort"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
)

// AggregateSales builds a sales report from paid orders.
//
// Department revenue is the literal sum of line revenue. Each order's cash,
// online and credit amounts are split across its departments by their share
// of that order's item revenue.
func AggregateSales(period Period, orders []PaidOrder, debtSettled types.Money) *SalesReport {
	report := &SalesReport{
		Period: period,
		Summary: SalesSummary{
			TotalRevenue:     types.Zero(),
			TotalDiscount:    types.Zero(),
			NetRevenue:       types.Zero(),
			TotalDebtSettled: debtSettled,
		},
		ByPaymentMethod: make(map[PaymentMethod]*PaymentBucket, len(KnownPaymentMethods)+1),
		ByDepartment:    make(map[Department]*DepartmentStat, len(KnownDepartments)+1),
	}
	for _, pm := range KnownPaymentMethods {
		report.ByPaymentMethod[pm] = &PaymentBucket{Amount: types.Zero()}
	}
	for _, d := range KnownDepartments {
		report.ByDepartment[d] = newDepartmentStat()
	}

	itemStats := make(map[Department]map[id.ID]*ItemStat)

	for _, o := range orders {
		net := o.TotalAmount.Sub(o.DiscountAmount)

		report.Summary.TotalOrders++
		report.Summary.TotalRevenue = report.Summary.TotalRevenue.Add(o.TotalAmount)
		report.Summary.TotalDiscount = report.Summary.TotalDiscount.Add(o.DiscountAmount)
		report.Summary.NetRevenue = report.Summary.NetRevenue.Add(net)

		pm := NormalizePaymentMethod(o.PaymentMethod)
		bucket, ok := report.ByPaymentMethod[pm]
		if !ok {
			bucket = &PaymentBucket{Amount: types.Zero()}
			report.ByPaymentMethod[pm] = bucket
		}
		bucket.Count++
		bucket.Amount = bucket.Amount.Add(net)

		subtotals, itemsTotal := departmentSubtotals(o.Items)
		for dept, sub := range subtotals {
			stat, ok := report.ByDepartment[dept]
			if !ok {
				stat = newDepartmentStat()
				report.ByDepartment[dept] = stat
			}
			stat.Revenue = stat.Revenue.Add(sub)
			stat.Cash = stat.Cash.Add(types.Share(o.CashAmount, sub, itemsTotal))
			stat.Online = stat.Online.Add(types.Share(o.OnlineAmount, sub, itemsTotal))
			stat.Credit = stat.Credit.Add(types.Share(o.CreditAmount, sub, itemsTotal))
		}

		for _, it := range o.Items {
			dept := NormalizeDepartment(it.Department)
			report.ByDepartment[dept].Items += it.Quantity

			byItem, ok := itemStats[dept]
			if !ok {
				byItem = make(map[id.ID]*ItemStat)
				itemStats[dept] = byItem
			}
			st, ok := byItem[it.MenuItemID]
			if !ok {
				st = &ItemStat{MenuItemID: it.MenuItemID, Name: it.Name, Revenue: types.Zero()}
				byItem[it.MenuItemID] = st
			}
			st.Quantity += it.Quantity
			st.Revenue = st.Revenue.Add(it.Revenue())
		}
	}

	for dept, byItem := range itemStats {
		report.ByDepartment[dept].TopItems = rankItems(byItem)
	}
	return report
}

// departmentSubtotals returns each department's item revenue and their sum.
func departmentSubtotals(items []PaidItem) (map[Department]types.Money, types.Money) {
	subtotals := make(map[Department]types.Money)
	total := types.Zero()
	for _, it := range items {
		dept := NormalizeDepartment(it.Department)
		rev := it.Revenue()
		if cur, ok := subtotals[dept]; ok {
			subtotals[dept] = cur.Add(rev)
		} else {
			subtotals[dept] = rev
		}
		total = total.Add(rev)
	}
	return subtotals, total
}

// rankItems lists every item sold, highest revenue first.
func rankItems(byItem map[id.ID]*ItemStat) []ItemStat {
	out := make([]ItemStat, 0, len(byItem))
	for _, st := range byItem {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].MenuItemID.String() < out[j].MenuItemID.String()
	})
	return out
}

func newDepartmentStat() *DepartmentStat {
	return &DepartmentStat{
		Revenue:  types.Zero(),
		Cash:     types.Zero(),
		Online:   types.Zero(),
		Credit:   types.Zero(),
		TopItems: []ItemStat{},
	}
}

// ComputeProfit subtracts purchase costs from net revenue.
func ComputeProfit(period Period, netRevenue, costs types.Money) *ProfitReport {
	profit := netRevenue.Sub(costs)
	return &ProfitReport{
		Period: period,
		Financials: Financials{
			Revenue:      netRevenue,
			Costs:        costs,
			Profit:       profit,
			ProfitMargin: types.Percent(profit, netRevenue),
		},
	}
}

// SummarizeCredit totals outstanding debt. customers must already be filtered
// to positive balances.
func SummarizeCredit(customers []CreditCustomer) *CreditSummary {
	total := types.Zero()
	for _, c := range customers {
		total = total.Add(c.TotalDue)
	}
	if customers == nil {
		customers = []CreditCustomer{}
	}
	return &CreditSummary{
		TotalOutstanding:  total,
		CustomersWithDebt: len(customers),
		Customers:         customers,
	}
}
