// Package thdate renders dates in Thai locale with Buddhist-era years,
// matching how registrants see session dates in emails and exports.
package thdate

import (
	"fmt"
	"strings"
	"time"
)

var fullMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var shortMonths = [...]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

var weekdays = [...]string{
	"อาทิตย์", "จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์",
}

// BuddhistYear converts a Gregorian year to the Buddhist era.
func BuddhistYear(t time.Time) int {
	return t.Year() + 543
}

// Full renders a date as "2 มกราคม 2569".
func Full(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), fullMonths[t.Month()-1], BuddhistYear(t))
}

// Short renders a date as "2 ม.ค. 2569".
func Short(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), shortMonths[t.Month()-1], BuddhistYear(t))
}

// FullWithWeekday renders a date as "วันศุกร์ที่ 2 มกราคม พ.ศ. 2569".
func FullWithWeekday(t time.Time) string {
	return fmt.Sprintf("วัน%sที่ %d %s พ.ศ. %d", weekdays[t.Weekday()], t.Day(), fullMonths[t.Month()-1], BuddhistYear(t))
}

// Clock renders the time-of-day as "09:30".
func Clock(t time.Time) string {
	return t.Format("15:04")
}

// JoinShort renders a date list as a comma-joined short-form string.
func JoinShort(ts []time.Time) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = Short(t)
	}
	return strings.Join(parts, ", ")
}
