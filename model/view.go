package model

import (
	"strings"
	"time"
)

// DateLayout is the only accepted calendar date format (yyyy-MM-dd).
const DateLayout = "2006-01-02"

const (
	Yes = "Yes"
	No  = "No"
)

// InventoryView is the display projection of an inventory record.
type InventoryView struct {
	Store          *string `json:"Store"`
	Date           string  `json:"Date"`
	Flavor         string  `json:"Flavor"`
	IsSeasonFlavor string  `json:"IsSeasonFlavor"`
	Quantity       int     `json:"Quantity"`
	ListedBy       *string `json:"ListedBy"`
}

// ParseDate parses s strictly as yyyy-MM-dd and returns UTC midnight of that day.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as yyyy-MM-dd in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// YesNo renders a season flag.
func YesNo(b bool) string {
	if b {
		return Yes
	}
	return No
}

// IsYes reports whether s spells "Yes", ignoring case and surrounding space.
func IsYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), Yes)
}

// Project builds the view of a record. Unloaded or missing references render
// as null.
func (r *InventoryRecord) Project() InventoryView {
	view := InventoryView{
		Date:           FormatDate(r.Date),
		Flavor:         r.Flavor,
		IsSeasonFlavor: YesNo(r.IsSeasonFlavor),
		Quantity:       r.Quantity,
	}
	if r.Store != nil {
		name := r.Store.Name
		view.Store = &name
	}
	if r.Employee != nil {
		name := r.Employee.Name
		view.ListedBy = &name
	}
	return view
}

// ProjectAll projects records in order. It never returns nil.
func ProjectAll(records []*InventoryRecord) []InventoryView {
	views := make([]InventoryView, 0, len(records))
	for _, r := range records {
		views = append(views, r.Project())
	}
	return views
}
