// Package reports aggregates paid orders into sales, profit and credit reports.
package reports

import (
	"strings"
	"time"

	"restopos/internal/core/id"
	"restopos/internal/core/types"
)

// PaymentMethod is a closed set of payment buckets.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentMixed  PaymentMethod = "MIXED"
	PaymentCredit PaymentMethod = "CREDIT"
	PaymentOther  PaymentMethod = "OTHER"
)

// KnownPaymentMethods are always present in a sales report.
var KnownPaymentMethods = []PaymentMethod{PaymentCash, PaymentOnline, PaymentMixed, PaymentCredit}

// NormalizePaymentMethod maps unknown or empty values to OTHER.
func NormalizePaymentMethod(s string) PaymentMethod {
	pm := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range KnownPaymentMethods {
		if pm == known {
			return pm
		}
	}
	return PaymentOther
}

// Department is the kitchen section a menu item belongs to.
type Department string

const (
	DeptKitchen Department = "KITCHEN"
	DeptDrink   Department = "DRINK"
	DeptBakery  Department = "BAKERY"
	DeptHukka   Department = "HUKKA"
	DeptOther   Department = "OTHER"
)

// KnownDepartments are always present in a sales report.
var KnownDepartments = []Department{DeptKitchen, DeptDrink, DeptBakery, DeptHukka}

// NormalizeDepartment maps unknown or empty values to OTHER.
func NormalizeDepartment(s string) Department {
	d := Department(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range KnownDepartments {
		if d == known {
			return d
		}
	}
	return DeptOther
}

// Period is an inclusive reporting window.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// PaidOrder is the reporting projection of a paid order.
type PaidOrder struct {
	ID             id.ID       `db:"id"`
	TotalAmount    types.Money `db:"total_amount"`
	DiscountAmount types.Money `db:"discount_amount"`
	PaymentMethod  string      `db:"payment_method"`
	CashAmount     types.Money `db:"cash_amount"`
	OnlineAmount   types.Money `db:"online_amount"`
	CreditAmount   types.Money `db:"credit_amount"`
	CreatedAt      time.Time   `db:"created_at"`

	Items []PaidItem `db:"-"`
}

// PaidItem is one line of a paid order.
type PaidItem struct {
	OrderID       id.ID       `db:"order_id"`
	MenuItemID    id.ID       `db:"menu_item_id"`
	Name          string      `db:"name"`
	Department    string      `db:"department"`
	Quantity      int         `db:"quantity"`
	PriceSnapshot types.Money `db:"price_snapshot"`
}

// Revenue is PriceSnapshot * Quantity.
func (i PaidItem) Revenue() types.Money {
	return types.LineTotal(i.PriceSnapshot, i.Quantity)
}

// SalesSummary holds order-level totals.
type SalesSummary struct {
	TotalRevenue     types.Money `json:"totalRevenue"`
	TotalOrders      int         `json:"totalOrders"`
	TotalDiscount    types.Money `json:"totalDiscount"`
	NetRevenue       types.Money `json:"netRevenue"`
	TotalDebtSettled types.Money `json:"totalDebtSettled"`
}

// PaymentBucket is net revenue and order count for one payment method.
type PaymentBucket struct {
	Count  int         `json:"count"`
	Amount types.Money `json:"amount"`
}

// ItemStat is quantity and revenue of one menu item inside a department.
type ItemStat struct {
	MenuItemID id.ID       `json:"menuItemId"`
	Name       string      `json:"name"`
	Quantity   int         `json:"quantity"`
	Revenue    types.Money `json:"revenue"`
}

// DepartmentStat is a department's revenue plus its allocated share of payments.
type DepartmentStat struct {
	Revenue  types.Money `json:"revenue"`
	Items    int         `json:"items"`
	Cash     types.Money `json:"cash"`
	Online   types.Money `json:"online"`
	Credit   types.Money `json:"credit"`
	TopItems []ItemStat  `json:"topItems"`
}

// SalesReport is the full sales aggregation for a period.
type SalesReport struct {
	Period          Period                           `json:"period"`
	Summary         SalesSummary                     `json:"summary"`
	ByPaymentMethod map[PaymentMethod]*PaymentBucket `json:"byPaymentMethod"`
	ByDepartment    map[Department]*DepartmentStat   `json:"byDepartment"`
}

// Financials is the profit rollup.
type Financials struct {
	Revenue      types.Money `json:"revenue"`
	Costs        types.Money `json:"costs"`
	Profit       types.Money `json:"profit"`
	ProfitMargin types.Money `json:"profitMargin"`
}

// ProfitReport is net revenue less purchase costs for a period.
type ProfitReport struct {
	Period     Period     `json:"period"`
	Financials Financials `json:"financials"`
}

// CreditCustomer is a customer who owes money.
type CreditCustomer struct {
	ID          id.ID       `db:"id" json:"id"`
	FullName    string      `db:"full_name" json:"fullName"`
	PhoneNumber string      `db:"phone_number" json:"phoneNumber"`
	TotalDue    types.Money `db:"total_due" json:"totalDue"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// CreditSummary lists outstanding customer debt, largest first.
type CreditSummary struct {
	TotalOutstanding  types.Money      `json:"totalOutstanding"`
	CustomersWithDebt int              `json:"customersWithDebt"`
	Customers         []CreditCustomer `json:"customers"`
}
