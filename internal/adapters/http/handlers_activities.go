package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"academy/internal/adapters/export"
	"academy/internal/adapters/payment"
	activityStore "academy/internal/adapters/storage/activity"
	"academy/internal/application/listutil"
	"academy/internal/application/orchestrators"
	"academy/internal/application/projections"
	"academy/internal/domain/activity"
	"academy/internal/domain/applicant"
	"academy/internal/domain/notify"
	"academy/internal/domain/registration"
	"academy/internal/domain/thdate"
	"academy/internal/domain/wizard"
	"academy/pkg/validator"
)

type scheduleResponse struct {
	ID             string `json:"id"`
	EventStartAt   string `json:"eventStartAt"`
	EventDateLabel string `json:"eventDateLabel"`
	Price          int    `json:"price"`
	AvailableSpots int    `json:"availableSpots"`
	Selectable     bool   `json:"selectable"`
}

type activityResponse struct {
	ID                  string             `json:"id"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	DescriptionShort    string             `json:"descriptionShort,omitempty"`
	ThumbnailFileID     string             `json:"thumbnailFileId,omitempty"`
	RegistrationOpenAt  time.Time          `json:"registrationOpenAt"`
	RegistrationCloseAt time.Time          `json:"registrationCloseAt"`
	Approved            bool               `json:"approved"`
	Open                bool               `json:"open"`
	Schedules           []scheduleResponse `json:"schedules,omitempty"`
}

func toActivityResponse(act activity.Activity, open bool) activityResponse {
	return activityResponse{
		ID:                  act.ID,
		Title:               act.Title,
		Description:         act.Description,
		DescriptionShort:    act.DescriptionShort,
		ThumbnailFileID:     act.ThumbnailFileID,
		RegistrationOpenAt:  act.RegistrationOpenAt,
		RegistrationCloseAt: act.RegistrationCloseAt,
		Approved:            act.Approved,
		Open:                open,
	}
}

// handleListActivities handles GET /api/activities. Members see only
// approved activities; admins additionally get the unapproved backlog.
func handleListActivities(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	published, err := stores.ActivityStore.ListPublished(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	now := timeNow()
	out := make([]activityResponse, 0, len(published))
	for _, act := range published {
		out = append(out, toActivityResponse(act, act.IsOpen(now)))
	}

	if isAdminSession(sess) {
		unpublished, err := stores.ActivityStore.ListUnpublished(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		for _, act := range unpublished {
			out = append(out, toActivityResponse(act, false))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"activities": out})
}

type createScheduleRequest struct {
	EventStartAt time.Time `json:"eventStartAt" validate:"required"`
	Price        int       `json:"price" validate:"min=0"`
	MaxUsers     int       `json:"maxUsers" validate:"min=0"`
}

type createActivityRequest struct {
	Title               string                  `json:"title" validate:"required,max=200"`
	Description         string                  `json:"description"`
	DescriptionShort    string                  `json:"descriptionShort" validate:"max=300"`
	ThumbnailFileID     string                  `json:"thumbnailFileId"`
	RegistrationOpenAt  time.Time               `json:"registrationOpenAt" validate:"required"`
	RegistrationCloseAt time.Time               `json:"registrationCloseAt" validate:"required"`
	Schedules           []createScheduleRequest `json:"schedules" validate:"required,min=1,dive"`
}

// handleCreateActivity handles POST /api/activities (admin only).
func handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req createActivityRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	input := orchestrators.CreateActivityInput{
		Title:               req.Title,
		Description:         req.Description,
		DescriptionShort:    req.DescriptionShort,
		ThumbnailFileID:     req.ThumbnailFileID,
		RegistrationOpenAt:  req.RegistrationOpenAt,
		RegistrationCloseAt: req.RegistrationCloseAt,
		CreatedBy:           sess.AccountID,
	}
	for _, s := range req.Schedules {
		input.Schedules = append(input.Schedules, orchestrators.ScheduleInput{
			EventStartAt: s.EventStartAt,
			Price:        s.Price,
			MaxUsers:     s.MaxUsers,
		})
	}

	id, err := orchestrators.ExecuteCreateActivity(r.Context(), input, orchestrators.CreateActivityDeps{
		ActivityStore: stores.ActivityStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleGetActivity handles GET /api/activities/{id}.
func handleGetActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}

	detail, err := projections.QueryGetActivityDetail(r.Context(), projections.GetActivityDetailQuery{
		ActivityID: r.PathValue("id"),
		Now:        timeNow(),
	}, projections.GetActivityDetailDeps{
		ActivityStore:     stores.ActivityStore,
		RegistrationStore: stores.RegistrationStore,
	})
	if errors.Is(err, activityStore.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	// Unapproved activities stay invisible to members.
	if !detail.Activity.Approved && !isAdminSession(sess) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}

	resp := toActivityResponse(detail.Activity, detail.Open)
	for _, opt := range detail.Schedules {
		resp.Schedules = append(resp.Schedules, scheduleResponse{
			ID:             opt.ID,
			EventStartAt:   opt.EventStartAt.Format(time.RFC3339),
			EventDateLabel: thdate.Short(opt.EventStartAt),
			Price:          opt.Price,
			AvailableSpots: opt.AvailableSpots,
			Selectable:     opt.Selectable(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleApproveActivity handles POST /api/activities/{id}/approve (admin only).
func handleApproveActivity(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	err := orchestrators.ExecuteApproveActivity(r.Context(), orchestrators.ApproveActivityInput{
		ActivityID: r.PathValue("id"),
	}, orchestrators.ApproveActivityDeps{ActivityStore: stores.ActivityStore})
	switch {
	case errors.Is(err, activityStore.ErrNotFound):
		http.Error(w, "activity not found", http.StatusNotFound)
	case errors.Is(err, activity.ErrAlreadyApproved):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		internalError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

type joinActivityRequest struct {
	ApplicantID     string            `json:"applicantId"`
	NewApplicant    *applicantRequest `json:"newApplicant"`
	UseAccountEmail bool              `json:"useAccountEmail"`
	ScheduleIDs     []string          `json:"scheduleIds" validate:"required,min=1"`
	ProofFileID     string            `json:"proofFileId"`
}

// handleJoinActivity handles POST /api/activities/{id}/join. The
// request is replayed through the registration wizard's steps so the
// server enforces the same gates the UI does, then the resulting
// submission is expanded into pending rows.
func handleJoinActivity(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionOrFail(w, r)
	if !ok {
		return
	}
	var req joinActivityRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.NewApplicant != nil {
		if err := validator.Validate(r.Context(), *req.NewApplicant); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	detail, err := projections.QueryGetActivityDetail(r.Context(), projections.GetActivityDetailQuery{
		ActivityID: r.PathValue("id"),
		Now:        timeNow(),
	}, projections.GetActivityDetailDeps{
		ActivityStore:     stores.ActivityStore,
		RegistrationStore: stores.RegistrationStore,
	})
	if errors.Is(err, activityStore.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	profiles, err := stores.ApplicantStore.ListByAccountID(r.Context(), sess.AccountID)
	if err != nil {
		internalError(w, err)
		return
	}

	submission, err := runWizard(sess.Email, profiles, detail.Schedules, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, wizard.ErrScheduleFull) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	input := orchestrators.JoinActivityInput{
		ActivityID:  r.PathValue("id"),
		AccountID:   sess.AccountID,
		ApplicantID: submission.ProfileID,
		ScheduleIDs: submission.ScheduleIDs,
		ProofFileID: submission.ProofFileID,
	}
	if submission.NewApplicant != nil {
		draft := *submission.NewApplicant
		draft.AccountID = sess.AccountID
		input.NewApplicant = &draft
	}

	result, err := orchestrators.ExecuteJoinActivity(r.Context(), input, orchestrators.JoinActivityDeps{
		ActivityStore:     stores.ActivityStore,
		ApplicantStore:    stores.ApplicantStore,
		RegistrationStore: stores.RegistrationStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	switch {
	case errors.Is(err, activity.ErrNotApproved):
		http.Error(w, "activity not found", http.StatusNotFound)
	case errors.Is(err, activity.ErrWindowClosed),
		errors.Is(err, registration.ErrScheduleFull):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, applicant.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"applicantId":     result.ApplicantID,
			"registrationIds": result.RegistrationIDs,
		})
	}
}

// runWizard walks a join request through the three wizard steps.
func runWizard(accountEmail string, profiles []applicant.Applicant, schedules []wizard.ScheduleOption, req joinActivityRequest) (wizard.Submission, error) {
	state := wizard.New(accountEmail, profiles, schedules)

	if req.ApplicantID != "" {
		if err := state.SelectProfile(req.ApplicantID); err != nil {
			return wizard.Submission{}, err
		}
	} else if req.NewApplicant != nil {
		state.SetUseAccountEmail(req.UseAccountEmail)
		state.StartNewApplicant(req.NewApplicant.toApplicant())
	}
	if err := state.Next(); err != nil {
		return wizard.Submission{}, err
	}

	for _, id := range req.ScheduleIDs {
		if err := state.ToggleSchedule(id); err != nil {
			return wizard.Submission{}, err
		}
	}
	if err := state.Next(); err != nil {
		return wizard.Submission{}, err
	}

	if req.ProofFileID != "" {
		state.AttachProof(req.ProofFileID)
	}
	return state.Submission()
}

type registrantResponse struct {
	ApplicantID     string   `json:"applicantId"`
	RegistrationIDs []string `json:"registrationIds"`
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	School          string   `json:"school"`
	EducationLevel  string   `json:"educationLevel"`
	RegisteredAt    string   `json:"registeredAt"`
	EventDates      []string `json:"eventDates"`
	Amount          int      `json:"amount"`
	Status          string   `json:"status"`
	SlipFileID      string   `json:"slipFileId,omitempty"`
}

// handleListRegistrants handles GET /api/activities/{id}/registrants
// (admin only). Query parameters follow the shared list conventions:
// page, per_page, sort, direction, search and a status filter.
func handleListRegistrants(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	result, err := projections.QueryGetRegistrants(r.Context(), projections.GetRegistrantsQuery{
		ActivityID: r.PathValue("id"),
	}, registrantsDeps())
	if errors.Is(err, activityStore.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	params := listutil.ParseListParams(r.URL.Query(), projections.RegistrantSortColumns, projections.RegistrantFilterKeys)
	page, info := projections.ApplyListParams(result.Registrants, params)

	rows := make([]registrantResponse, 0, len(page))
	for _, reg := range page {
		dates := make([]string, 0, len(reg.EventDates))
		for _, d := range reg.EventDates {
			dates = append(dates, thdate.Short(d))
		}
		rows = append(rows, registrantResponse{
			ApplicantID:     reg.ApplicantID,
			RegistrationIDs: reg.RegistrationIDs,
			FullName:        reg.FullName,
			Email:           reg.Email,
			School:          reg.School,
			EducationLevel:  applicant.EducationLevelLabel(reg.EducationLevel),
			RegisteredAt:    thdate.Short(reg.RegisteredAt),
			EventDates:      dates,
			Amount:          reg.Amount,
			Status:          reg.Status,
			SlipFileID:      reg.SlipFileID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"registrants": rows,
		"warnings":    result.Warnings,
		"stats":       result.Stats,
		"pageInfo":    info,
	})
}

type sendEmailsRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
	EndTime string `json:"endTime"`
}

// handleSendApprovalEmails handles POST /api/activities/{id}/emails
// (admin only).
func handleSendApprovalEmails(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if emailSender == nil {
		http.Error(w, "email sending is not configured", http.StatusServiceUnavailable)
		return
	}
	var req sendEmailsRequest
	if err := strictDecode(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteSendApprovalEmails(r.Context(), orchestrators.SendApprovalEmailsInput{
		ActivityID: r.PathValue("id"),
		Template:   notify.Template{Subject: req.Subject, Body: req.Body},
		EndTime:    req.EndTime,
		From:       emailFromAddress,
		ReplyTo:    emailReplyTo,
	}, orchestrators.SendApprovalEmailsDeps{
		ActivityStore:     stores.ActivityStore,
		RegistrationStore: stores.RegistrationStore,
		ApplicantStore:    stores.ApplicantStore,
		EmailSender:       emailSender,
		Now:               timeNow,
	})
	switch {
	case errors.Is(err, activityStore.ErrNotFound):
		http.Error(w, "activity not found", http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"sent":       result.SentCount,
			"skipped":    result.Skipped,
			"recipients": result.Recipients,
		})
	}
}

// handleExportRegistrants handles GET /api/activities/{id}/export
// (admin only). The format query parameter picks csv, xlsx or pdf.
func handleExportRegistrants(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}

	act, err := stores.ActivityStore.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, activityStore.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	result, err := projections.QueryGetRegistrants(r.Context(), projections.GetRegistrantsQuery{
		ActivityID: act.ID,
	}, registrantsDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	sheet := export.BuildSheet(act.Title, result.Registrants, result.Stats)

	switch format {
	case export.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", exportDisposition(act.ID, "csv"))
		err = export.WriteCSV(w, sheet)
	case export.FormatXLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", exportDisposition(act.ID, "xlsx"))
		err = export.WriteXLSX(w, sheet)
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", exportDisposition(act.ID, "pdf"))
		err = export.WritePDF(w, sheet)
	default:
		http.Error(w, "format must be csv, xlsx or pdf", http.StatusBadRequest)
		return
	}
	if err != nil {
		// Headers are already out; all we can do is log.
		internalError(w, err)
	}
}

func exportDisposition(activityID, ext string) string {
	return fmt.Sprintf("attachment; filename=registrants-%s.%s", activityID, ext)
}

// handlePaymentCode handles GET /api/activities/{id}/payment-code. It
// returns the PromptPay payload for the caller's selected schedules so
// the UI can render a QR image client-side.
func handlePaymentCode(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionOrFail(w, r); !ok {
		return
	}
	if promptPayTarget == "" {
		http.Error(w, "payments are not configured", http.StatusServiceUnavailable)
		return
	}

	detail, err := projections.QueryGetActivityDetail(r.Context(), projections.GetActivityDetailQuery{
		ActivityID: r.PathValue("id"),
		Now:        timeNow(),
	}, projections.GetActivityDetailDeps{
		ActivityStore:     stores.ActivityStore,
		RegistrationStore: stores.RegistrationStore,
	})
	if errors.Is(err, activityStore.ErrNotFound) {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	byID := make(map[string]wizard.ScheduleOption, len(detail.Schedules))
	for _, opt := range detail.Schedules {
		byID[opt.ID] = opt
	}
	total := 0
	for _, id := range r.URL.Query()["schedule"] {
		opt, found := byID[id]
		if !found {
			http.Error(w, "unknown schedule", http.StatusBadRequest)
			return
		}
		total += opt.Price
	}
	if total <= 0 {
		http.Error(w, "nothing to pay for the selected schedules", http.StatusBadRequest)
		return
	}

	payload, err := payment.BuildPayload(promptPayTarget, int64(total)*100)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payload": payload,
		"amount":  total,
	})
}

func registrantsDeps() projections.GetRegistrantsDeps {
	return projections.GetRegistrantsDeps{
		ActivityStore:     stores.ActivityStore,
		RegistrationStore: stores.RegistrationStore,
		ApplicantStore:    stores.ApplicantStore,
	}
}
