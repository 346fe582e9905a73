package tvs

import "sort"

type Summary struct {
	TVs       int
	Customers int
	Paid      int
	Pending   int
}

// GroupSummary is one line of the per-TV overview.
type GroupSummary struct {
	ID        string
	Name      string
	Customers int
	Paid      int
	Pending   int
}

// CustomerRow is a customer together with the TV it belongs to.
type CustomerRow struct {
	Customer
	TvID   string
	TvName string
}

func Summarize(groups []TvGroup) (Summary, []GroupSummary) {
	total := Summary{TVs: len(groups)}
	lines := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		line := GroupSummary{ID: g.ID, Name: g.Name, Customers: len(g.Customers)}
		for _, c := range g.Customers {
			if c.PaymentStatus {
				line.Paid++
			} else {
				line.Pending++
			}
		}
		total.Customers += line.Customers
		total.Paid += line.Paid
		total.Pending += line.Pending
		lines = append(lines, line)
	}
	return total, lines
}

// Customers flattens groups into one list ordered by customer name, then TV name.
func Customers(groups []TvGroup) []CustomerRow {
	var rows []CustomerRow
	for _, g := range groups {
		for _, c := range g.Customers {
			rows = append(rows, CustomerRow{Customer: c, TvID: g.ID, TvName: g.Name})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].TvName < rows[j].TvName
	})
	return rows
}
