package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "academy/internal/adapters/email"
	"academy/internal/application/projections"
	"academy/internal/domain/applicant"
	"academy/internal/domain/notify"
	"academy/internal/domain/registration"
	"academy/internal/domain/thdate"

	"github.com/yuin/goldmark"
)

// SendApprovalEmailsInput carries input for the notification batch.
type SendApprovalEmailsInput struct {
	ActivityID string
	Template   notify.Template
	EndTime    string // optional session end time shown in the email
	From       string
	ReplyTo    string
}

// RecipientResult reports the outcome for one registrant.
type RecipientResult struct {
	ApplicantID string
	Email       string
	Sent        bool
	MessageID   string
	Error       string
}

// SendApprovalEmailsResult carries per-recipient outcomes.
type SendApprovalEmailsResult struct {
	Recipients []RecipientResult
	SentCount  int
	Skipped    int // registrants with no usable address
}

// SendApprovalEmailsDeps holds dependencies for SendApprovalEmails.
type SendApprovalEmailsDeps struct {
	ActivityStore     projections.ActivityStore
	RegistrationStore projections.RegistrationStore
	ApplicantStore    projections.ApplicantStore
	EmailSender       emailAdapter.Sender
	Now               func() time.Time
}

// ExecuteSendApprovalEmails notifies every approved registrant of an
// activity. The template placeholders are resolved per registrant from
// the aggregated view; the body is markdown and rendered to HTML.
// PRE: Template passes validation
// POST: One email attempted per approved registrant with an address;
// the result names exactly who was reached
func ExecuteSendApprovalEmails(ctx context.Context, input SendApprovalEmailsInput, deps SendApprovalEmailsDeps) (SendApprovalEmailsResult, error) {
	if err := input.Template.Validate(); err != nil {
		return SendApprovalEmailsResult{}, err
	}

	agg, err := projections.QueryGetRegistrants(ctx,
		projections.GetRegistrantsQuery{ActivityID: input.ActivityID},
		projections.GetRegistrantsDeps{
			ActivityStore:     deps.ActivityStore,
			RegistrationStore: deps.RegistrationStore,
			ApplicantStore:    deps.ApplicantStore,
		})
	if err != nil {
		return SendApprovalEmailsResult{}, err
	}

	var result SendApprovalEmailsResult
	var reqs []emailAdapter.SendRequest
	var reqIndex []int // result index for each request

	queue := 0
	for _, r := range agg.Registrants {
		if r.Status != registration.StatusApproved {
			continue
		}
		queue++
		if r.Email == "" {
			result.Recipients = append(result.Recipients, RecipientResult{
				ApplicantID: r.ApplicantID,
				Error:       "no contact email",
			})
			result.Skipped++
			continue
		}

		app, err := deps.ApplicantStore.GetByID(ctx, r.ApplicantID)
		if err != nil {
			result.Recipients = append(result.Recipients, RecipientResult{
				ApplicantID: r.ApplicantID,
				Error:       "applicant profile missing",
			})
			result.Skipped++
			continue
		}

		startTime := ""
		if len(r.EventDates) > 0 {
			startTime = thdate.Clock(r.EventDates[0])
		}
		subject, body := input.Template.Resolve(notify.Values{
			Prefix:      app.Prefix,
			Name:        app.FullName,
			Rank:        applicant.EducationLevelLabel(app.EducationLevel),
			School:      r.School,
			Dates:       thdate.JoinShort(r.EventDates),
			Money:       r.Amount,
			QueueNumber: queue,
			StartTime:   startTime,
			EndTime:     input.EndTime,
			SenderEmail: input.From,
		})

		var html bytes.Buffer
		if err := goldmark.Convert([]byte(body), &html); err != nil {
			return result, fmt.Errorf("render email body: %w", err)
		}

		reqIndex = append(reqIndex, len(result.Recipients))
		result.Recipients = append(result.Recipients, RecipientResult{
			ApplicantID: r.ApplicantID,
			Email:       r.Email,
		})
		reqs = append(reqs, emailAdapter.SendRequest{
			To:      []string{r.Email},
			From:    input.From,
			Subject: subject,
			HTML:    html.String(),
			ReplyTo: input.ReplyTo,
		})
	}

	if len(reqs) == 0 {
		return result, nil
	}

	sendResults, sendErr := deps.EmailSender.SendBatch(ctx, reqs)
	for i := range reqs {
		rr := &result.Recipients[reqIndex[i]]
		if i < len(sendResults) {
			rr.Sent = true
			rr.MessageID = sendResults[i].MessageID
			result.SentCount++
		} else if sendErr != nil {
			rr.Error = sendErr.Error()
		}
	}

	slog.Info("notification_event", "event", "approval_emails_sent",
		"activity_id", input.ActivityID,
		"sent", result.SentCount, "skipped", result.Skipped,
		"failed", len(reqs)-result.SentCount)
	if sendErr != nil {
		return result, sendErr
	}
	return result, nil
}
