package notify

import (
	"errors"
	"strconv"
	"strings"
)

// Default template used when the admin does not supply one.
const (
	DefaultSubject = "เรื่อง แจ้งผลการสมัครเข้าร่วมกิจกรรม"

	DefaultBody = "เรียน {prefix} {name}\n" +
		"{rank} {school}\n\n" +
		"ทางโครงการได้รับการชำระเงินค่าสมัครเข้าร่วมกิจกรรมในวัน {date} " +
		"เป็นเงิน {money} บาท และท่านได้ลงทะเบียนเป็นลำดับที่ {id}\n\n" +
		"วันจัดกิจกรรม - วันที่ {date} เริ่มเวลา {startTime} น.\n\n" +
		"หากมีข้อสงสัยกรุณาติดต่อ {email}"
)

// Domain errors
var (
	ErrEmptySubject = errors.New("email subject cannot be empty")
	ErrEmptyBody    = errors.New("email body cannot be empty")
)

// Template is an email template with per-applicant placeholders.
// Placeholders are resolved against each applicant's own fields and
// never shared across applicants.
type Template struct {
	Subject string
	Body    string
}

// Values carries the per-applicant placeholder substitutions.
type Values struct {
	Prefix      string // {prefix} — name prefix
	Name        string // {name} — applicant full name
	Rank        string // {rank} — education level label
	School      string // {school}
	Dates       string // {date} — joined, locale-formatted session dates
	Money       int    // {money} — total amount for the applicant
	QueueNumber int    // {id} — 1-based position in aggregate output order
	StartTime   string // {startTime} — first session start, "HH:MM"
	EndTime     string // {endTime} — admin-supplied, may be empty
	SenderEmail string // {email} — reply/contact address
}

// Validate checks the template has content.
// PRE: Template struct is initialized
// POST: Returns error if subject or body is empty
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(t.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Resolve substitutes every placeholder in the subject and body.
// PRE: t has been validated
// POST: Returns subject and body with all placeholders replaced
func (t *Template) Resolve(v Values) (subject, body string) {
	r := strings.NewReplacer(
		"{prefix}", v.Prefix,
		"{name}", v.Name,
		"{rank}", v.Rank,
		"{school}", v.School,
		"{date}", v.Dates,
		"{money}", strconv.Itoa(v.Money),
		"{id}", strconv.Itoa(v.QueueNumber),
		"{startTime}", v.StartTime,
		"{endTime}", v.EndTime,
		"{email}", v.SenderEmail,
	)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

// DefaultTemplate returns the built-in template.
func DefaultTemplate() Template {
	return Template{Subject: DefaultSubject, Body: DefaultBody}
}
