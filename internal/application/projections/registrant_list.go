package projections

import (
	"sort"
	"strings"

	"academy/internal/application/listutil"
)

// RegistrantSortColumns are the columns the admin table can sort on.
var RegistrantSortColumns = []string{"name", "school", "registered_at", "amount", "status"}

// RegistrantFilterKeys are the recognised exact-match filters.
var RegistrantFilterKeys = []string{"status"}

// ApplyListParams filters, sorts, and pages an aggregated registrant
// list for the admin table. The search matches name, school, and email
// case-insensitively; the status filter matches the derived status.
// POST: result order is deterministic for equal sort keys
func ApplyListParams(registrants []Registrant, params listutil.ListParams) ([]Registrant, listutil.PageInfo) {
	filtered := make([]Registrant, 0, len(registrants))
	search := strings.ToLower(strings.TrimSpace(params.Search))
	status := params.Filters["status"]
	for _, r := range registrants {
		if status != "" && r.Status != status {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		filtered = append(filtered, r)
	}

	if params.Sort != "" {
		sortRegistrants(filtered, params.Sort, params.Dir == "desc")
	}

	info := listutil.NewPageInfo(params.Page, params.PerPage, len(filtered))
	return listutil.PageSlice(filtered, info), info
}

func matchesSearch(r Registrant, search string) bool {
	return strings.Contains(strings.ToLower(r.FullName), search) ||
		strings.Contains(strings.ToLower(r.School), search) ||
		strings.Contains(strings.ToLower(r.Email), search)
}

func sortRegistrants(rs []Registrant, column string, desc bool) {
	less := func(i, j int) bool { return rs[i].ApplicantID < rs[j].ApplicantID }
	switch column {
	case "name":
		less = func(i, j int) bool { return rs[i].FullName < rs[j].FullName }
	case "school":
		less = func(i, j int) bool { return rs[i].School < rs[j].School }
	case "registered_at":
		less = func(i, j int) bool { return rs[i].RegisteredAt.Before(rs[j].RegisteredAt) }
	case "amount":
		less = func(i, j int) bool { return rs[i].Amount < rs[j].Amount }
	case "status":
		less = func(i, j int) bool { return rs[i].Status < rs[j].Status }
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if desc {
			return less(j, i)
		}
		return less(i, j)
	})
}
