// Package export renders the aggregated registrant list as CSV, XLSX,
// or PDF for download by admins.
package export

import (
	"strconv"

	"academy/internal/application/projections"
	"academy/internal/domain/applicant"
	"academy/internal/domain/thdate"
)

// Format identifiers accepted by the export endpoint.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Header is the column order shared by every output format.
var Header = []string{
	"ลำดับ",          // index
	"ชื่อ-นามสกุล",   // full name
	"อีเมล",          // email
	"โรงเรียน",       // school
	"ระดับชั้น",      // education level
	"รอบกิจกรรม",     // session date(s)
	"วันที่สมัคร",    // registered date
	"ยอดชำระ (บาท)",  // amount
	"สถานะ",          // status
}

var statusLabels = map[string]string{
	"pending":  "รอตรวจสอบ",
	"approved": "อนุมัติ",
	"rejected": "ไม่อนุมัติ",
}

// Sheet is a rendered table plus the summary line formats need.
type Sheet struct {
	Title      string
	Rows       [][]string
	Registered int
	Capacity   int
}

// BuildSheet flattens aggregated registrants into ordered string rows.
// INVARIANT: row order follows the registrant order (earliest first)
func BuildSheet(title string, registrants []projections.Registrant, stats projections.ActivityStats) Sheet {
	rows := make([][]string, 0, len(registrants))
	for i, r := range registrants {
		status := statusLabels[r.Status]
		if status == "" {
			status = r.Status
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.FullName,
			r.Email,
			r.School,
			applicant.EducationLevelLabel(r.EducationLevel),
			thdate.JoinShort(r.EventDates),
			thdate.Short(r.RegisteredAt),
			strconv.Itoa(r.Amount),
			status,
		})
	}
	return Sheet{
		Title:      title,
		Rows:       rows,
		Registered: stats.Registered,
		Capacity:   stats.Capacity,
	}
}
