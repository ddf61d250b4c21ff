package dto

import (
	"slices"
	"strings"

	"restopos/internal/core/types"
	"restopos/internal/domain/reports"
)

// ReportRangeRequest is the optional inclusive date range of a report.
// Both dates accept YYYY-MM-DD or RFC 3339.
type ReportRangeRequest struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// DepartmentResponse is one department row of a sales report.
type DepartmentResponse struct {
	Department string             `json:"department"`
	Revenue    types.Money        `json:"revenue"`
	Items      int                `json:"items"`
	Cash       types.Money        `json:"cash"`
	Online     types.Money        `json:"online"`
	Credit     types.Money        `json:"credit"`
	TopItems   []reports.ItemStat `json:"topItems"`
}

// SalesReportResponse keeps the keyed maps the dashboard reads and adds an
// ordered department list for tabular rendering.
type SalesReportResponse struct {
	*reports.SalesReport
	Departments []DepartmentResponse `json:"departments"`
}

// FromSalesReport converts domain report to response DTO.
// Departments are ordered by revenue, largest first, then by name.
func FromSalesReport(r *reports.SalesReport) SalesReportResponse {
	deps := make([]DepartmentResponse, 0, len(r.ByDepartment))
	for name, st := range r.ByDepartment {
		top := st.TopItems
		if top == nil {
			top = []reports.ItemStat{}
		}
		deps = append(deps, DepartmentResponse{
			Department: string(name),
			Revenue:    st.Revenue,
			Items:      st.Items,
			Cash:       st.Cash,
			Online:     st.Online,
			Credit:     st.Credit,
			TopItems:   top,
		})
	}
	slices.SortFunc(deps, func(a, b DepartmentResponse) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Department, b.Department)
	})
	return SalesReportResponse{SalesReport: r, Departments: deps}
}
