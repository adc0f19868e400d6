package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"academy/internal/adapters/filestore"
	"academy/internal/adapters/http/middleware"
	activityStore "academy/internal/adapters/storage/activity"
	applicantStore "academy/internal/adapters/storage/applicant"
	registrationStore "academy/internal/adapters/storage/registration"

	accountDomain "academy/internal/domain/account"
	activityDomain "academy/internal/domain/activity"
	applicantDomain "academy/internal/domain/applicant"
	fileDomain "academy/internal/domain/file"
	registrationDomain "academy/internal/domain/registration"
)

// --- Mock stores ---

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

func (m *mockAccountStore) GetByID(ctx context.Context, id string) (accountDomain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, accountDomain.ErrNotFound
}

func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountDomain.ErrNotFound
}

func (m *mockAccountStore) Save(ctx context.Context, a accountDomain.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockApplicantStore struct {
	applicants map[string]applicantDomain.Applicant
}

func (m *mockApplicantStore) GetByID(ctx context.Context, id string) (applicantDomain.Applicant, error) {
	if a, ok := m.applicants[id]; ok {
		return a, nil
	}
	return applicantDomain.Applicant{}, applicantStore.ErrNotFound
}

func (m *mockApplicantStore) Save(ctx context.Context, a applicantDomain.Applicant) error {
	m.applicants[a.ID] = a
	return nil
}

func (m *mockApplicantStore) Delete(ctx context.Context, id string) error {
	delete(m.applicants, id)
	return nil
}

func (m *mockApplicantStore) ListByAccountID(ctx context.Context, accountID string) ([]applicantDomain.Applicant, error) {
	var list []applicantDomain.Applicant
	for _, a := range m.applicants {
		if a.AccountID == accountID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type mockActivityStore struct {
	activities map[string]activityDomain.Activity
	schedules  map[string]activityDomain.Schedule
}

func (m *mockActivityStore) GetByID(ctx context.Context, id string) (activityDomain.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return activityDomain.Activity{}, activityStore.ErrNotFound
}

func (m *mockActivityStore) Save(ctx context.Context, a activityDomain.Activity) error {
	m.activities[a.ID] = a
	return nil
}

func (m *mockActivityStore) ListPublished(ctx context.Context) ([]activityDomain.Activity, error) {
	return m.list(true), nil
}

func (m *mockActivityStore) ListUnpublished(ctx context.Context) ([]activityDomain.Activity, error) {
	return m.list(false), nil
}

func (m *mockActivityStore) list(approved bool) []activityDomain.Activity {
	var list []activityDomain.Activity
	for _, a := range m.activities {
		if a.Approved == approved {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (m *mockActivityStore) GetSchedule(ctx context.Context, id string) (activityDomain.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		return s, nil
	}
	return activityDomain.Schedule{}, activityStore.ErrNotFound
}

func (m *mockActivityStore) SaveSchedule(ctx context.Context, s activityDomain.Schedule) error {
	m.schedules[s.ID] = s
	return nil
}

func (m *mockActivityStore) ListSchedules(ctx context.Context, activityID string) ([]activityDomain.Schedule, error) {
	var list []activityDomain.Schedule
	for _, s := range m.schedules {
		if s.ActivityID == activityID {
			list = append(list, s)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

type mockRegistrationStore struct {
	rows map[string]registrationDomain.ScheduleRegistration
	// scheduleActivity resolves ListByActivityID without a real join.
	scheduleActivity map[string]string
}

func (m *mockRegistrationStore) GetByID(ctx context.Context, id string) (registrationDomain.ScheduleRegistration, error) {
	if r, ok := m.rows[id]; ok {
		return r, nil
	}
	return registrationDomain.ScheduleRegistration{}, registrationStore.ErrNotFound
}

func (m *mockRegistrationStore) CreateBatch(ctx context.Context, rows []registrationDomain.ScheduleRegistration, capacities map[string]int) error {
	for _, r := range rows {
		if max := capacities[r.ScheduleID]; max > 0 {
			count, _ := m.CountBySchedule(ctx, r.ScheduleID)
			if count >= max {
				return registrationDomain.ErrScheduleFull
			}
		}
		m.rows[r.ID] = r
	}
	return nil
}

func (m *mockRegistrationStore) UpdateStatus(ctx context.Context, id, from, to string) (registrationDomain.ScheduleRegistration, error) {
	r, ok := m.rows[id]
	if !ok {
		return registrationDomain.ScheduleRegistration{}, registrationStore.ErrNotFound
	}
	if r.PaymentStatus != from {
		return registrationDomain.ScheduleRegistration{}, registrationDomain.ErrConflict
	}
	r.PaymentStatus = to
	m.rows[id] = r
	return r, nil
}

func (m *mockRegistrationStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return registrationStore.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *mockRegistrationStore) ListByActivityID(ctx context.Context, activityID string) ([]registrationDomain.ScheduleRegistration, error) {
	var list []registrationDomain.ScheduleRegistration
	for _, r := range m.rows {
		if m.scheduleActivity[r.ScheduleID] == activityID {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *mockRegistrationStore) CountBySchedule(ctx context.Context, scheduleID string) (int, error) {
	count := 0
	for _, r := range m.rows {
		if r.ScheduleID == scheduleID && r.PaymentStatus != registrationDomain.StatusRejected {
			count++
		}
	}
	return count, nil
}

func (m *mockRegistrationStore) CountActiveByApplicant(ctx context.Context, applicantID string) (int, error) {
	count := 0
	for _, r := range m.rows {
		if r.ApplicantID == applicantID && r.PaymentStatus != registrationDomain.StatusRejected {
			count++
		}
	}
	return count, nil
}

type mockFileStore struct {
	files map[string]fileDomain.StoredFile
}

func (m *mockFileStore) GetByID(ctx context.Context, id string) (fileDomain.StoredFile, error) {
	if f, ok := m.files[id]; ok {
		return f, nil
	}
	return fileDomain.StoredFile{}, fileDomain.ErrNotFound
}

func (m *mockFileStore) Save(ctx context.Context, f fileDomain.StoredFile) error {
	m.files[f.ID] = f
	return nil
}

func (m *mockFileStore) Delete(ctx context.Context, id string) error {
	delete(m.files, id)
	return nil
}

// --- Test helpers ---

func newTestStores() *Stores {
	return &Stores{
		AccountStore:      &mockAccountStore{accounts: make(map[string]accountDomain.Account)},
		ApplicantStore:    &mockApplicantStore{applicants: make(map[string]applicantDomain.Applicant)},
		ActivityStore:     &mockActivityStore{activities: make(map[string]activityDomain.Activity), schedules: make(map[string]activityDomain.Schedule)},
		RegistrationStore: &mockRegistrationStore{rows: make(map[string]registrationDomain.ScheduleRegistration), scheduleActivity: make(map[string]string)},
		FileStore:         &mockFileStore{files: make(map[string]fileDomain.StoredFile)},
	}
}

// authRequest returns a request with the given session injected into context.
func authRequest(method, url string, body string, sess middleware.Session) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	ctx := middleware.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx)
}

var adminSession = middleware.Session{
	AccountID: "admin-001",
	Email:     "admin@test.com",
	Role:      accountDomain.RoleAdmin,
	CreatedAt: time.Now(),
}

var memberSession = middleware.Session{
	AccountID: "member-001",
	Email:     "parent@test.com",
	Role:      accountDomain.RoleMember,
	CreatedAt: time.Now(),
}

// seedOpenActivity installs an approved activity with two schedules:
// s1 is paid with capacity 2, s2 is free with capacity 50.
func seedOpenActivity(s *Stores) {
	now := time.Now()
	act := s.ActivityStore.(*mockActivityStore)
	act.activities["act1"] = activityDomain.Activity{
		ID:                  "act1",
		Title:               "ค่ายคณิตศาสตร์",
		Approved:            true,
		RegistrationOpenAt:  now.Add(-time.Hour),
		RegistrationCloseAt: now.Add(time.Hour),
		CreatedBy:           "admin-001",
		CreatedAt:           now.Add(-48 * time.Hour),
	}
	act.schedules["s1"] = activityDomain.Schedule{
		ID: "s1", ActivityID: "act1",
		EventStartAt: now.Add(7 * 24 * time.Hour), Price: 500, MaxUsers: 2,
	}
	act.schedules["s2"] = activityDomain.Schedule{
		ID: "s2", ActivityID: "act1",
		EventStartAt: now.Add(8 * 24 * time.Hour), Price: 0, MaxUsers: 50,
	}
	reg := s.RegistrationStore.(*mockRegistrationStore)
	reg.scheduleActivity["s1"] = "act1"
	reg.scheduleActivity["s2"] = "act1"
}

func seedProfile(s *Stores, id, accountID string) {
	s.ApplicantStore.(*mockApplicantStore).applicants[id] = applicantDomain.Applicant{
		ID:             id,
		AccountID:      accountID,
		Prefix:         "เด็กชาย",
		FullName:       "สมชาย ใจดี",
		EducationLevel: 3,
		School:         "สวนกุหลาบวิทยาลัย",
		ParentName:     "สมศรี ใจดี",
		ParentEmail:    "parent@test.com",
		CreatedAt:      time.Now().Add(-24 * time.Hour),
	}
}

// --- Tests: session endpoints ---

func TestHandleLogin_CreatesAccountAndSession(t *testing.T) {
	stores = newTestStores()
	sessions = middleware.NewSessionStore()

	body := `{"email":"New.Parent@Test.com","displayName":"New Parent"}`
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["email"] != "new.parent@test.com" {
		t.Errorf("email = %q, want lowercased", resp["email"])
	}
	if resp["role"] != accountDomain.RoleMember {
		t.Errorf("role = %q, want member", resp["role"])
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "academy_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set")
	}
}

func TestHandleLogin_ExistingAccountKeepsRole(t *testing.T) {
	stores = newTestStores()
	sessions = middleware.NewSessionStore()
	stores.AccountStore.Save(context.Background(), accountDomain.Account{
		ID: "admin-001", Email: "admin@test.com", Role: accountDomain.RoleAdmin, CreatedAt: time.Now(),
	})

	body := `{"email":"admin@test.com","displayName":""}`
	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["role"] != accountDomain.RoleAdmin {
		t.Errorf("role = %q, want admin preserved", resp["role"])
	}
}

func TestHandleMe_Unauthenticated(t *testing.T) {
	stores = newTestStores()
	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()
	handleMe(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --- Tests: activities ---

func TestHandleListActivities_MemberSeesOnlyApproved(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	stores.ActivityStore.(*mockActivityStore).activities["draft1"] = activityDomain.Activity{
		ID: "draft1", Title: "ยังไม่เปิด", Approved: false,
	}

	rec := httptest.NewRecorder()
	handleListActivities(rec, authRequest("GET", "/api/activities", "", memberSession))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Activities []activityResponse `json:"activities"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Activities) != 1 || resp.Activities[0].ID != "act1" {
		t.Errorf("member sees %d activities, want 1 approved", len(resp.Activities))
	}

	rec = httptest.NewRecorder()
	handleListActivities(rec, authRequest("GET", "/api/activities", "", adminSession))
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Activities) != 2 {
		t.Errorf("admin sees %d activities, want 2", len(resp.Activities))
	}
}

func TestHandleGetActivity_UnapprovedHiddenFromMembers(t *testing.T) {
	stores = newTestStores()
	stores.ActivityStore.(*mockActivityStore).activities["draft1"] = activityDomain.Activity{
		ID: "draft1", Title: "ยังไม่เปิด", Approved: false,
	}

	req := authRequest("GET", "/api/activities/draft1", "", memberSession)
	req.SetPathValue("id", "draft1")
	rec := httptest.NewRecorder()
	handleGetActivity(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("member got %d, want %d", rec.Code, http.StatusNotFound)
	}

	req = authRequest("GET", "/api/activities/draft1", "", adminSession)
	req.SetPathValue("id", "draft1")
	rec = httptest.NewRecorder()
	handleGetActivity(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleGetActivity_SchedulesCarryAvailability(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	stores.RegistrationStore.(*mockRegistrationStore).rows["r1"] = registrationDomain.ScheduleRegistration{
		ID: "r1", ScheduleID: "s1", ApplicantID: "a1", PaymentStatus: registrationDomain.StatusPending,
	}

	req := authRequest("GET", "/api/activities/act1", "", memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleGetActivity(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp activityResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if !resp.Open {
		t.Error("activity should be open")
	}
	if len(resp.Schedules) != 2 {
		t.Fatalf("got %d schedules, want 2", len(resp.Schedules))
	}
	if resp.Schedules[0].AvailableSpots != 1 {
		t.Errorf("s1 spots = %d, want 1", resp.Schedules[0].AvailableSpots)
	}
}

func TestHandleCreateActivity_RequiresAdmin(t *testing.T) {
	stores = newTestStores()
	body := `{"title":"ค่าย","registrationOpenAt":"2026-01-01T00:00:00Z","registrationCloseAt":"2026-02-01T00:00:00Z","schedules":[{"eventStartAt":"2026-03-01T09:00:00Z","price":100,"maxUsers":30}]}`

	rec := httptest.NewRecorder()
	handleCreateActivity(rec, authRequest("POST", "/api/activities", body, memberSession))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member got %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = httptest.NewRecorder()
	handleCreateActivity(rec, authRequest("POST", "/api/activities", body, adminSession))
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin got %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	created, err := stores.ActivityStore.GetByID(context.Background(), resp["id"])
	if err != nil {
		t.Fatalf("created activity not stored: %v", err)
	}
	if created.Approved {
		t.Error("new activity must start unapproved")
	}
}

func TestHandleApproveActivity_SecondApproveConflicts(t *testing.T) {
	stores = newTestStores()
	stores.ActivityStore.(*mockActivityStore).activities["act1"] = activityDomain.Activity{
		ID: "act1", Title: "ค่าย", Approved: false,
	}

	req := authRequest("POST", "/api/activities/act1/approve", "", adminSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleApproveActivity(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = authRequest("POST", "/api/activities/act1/approve", "", adminSession)
	req.SetPathValue("id", "act1")
	rec = httptest.NewRecorder()
	handleApproveActivity(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second approve got %d, want %d", rec.Code, http.StatusConflict)
	}
}

// --- Tests: join ---

func TestHandleJoinActivity_CreatesRowPerSchedule(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	seedProfile(stores, "prof1", memberSession.AccountID)

	body := `{"applicantId":"prof1","scheduleIds":["s1","s2"],"proofFileId":"slip1"}`
	req := authRequest("POST", "/api/activities/act1/join", body, memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleJoinActivity(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		ApplicantID     string   `json:"applicantId"`
		RegistrationIDs []string `json:"registrationIds"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.ApplicantID != "prof1" {
		t.Errorf("applicantId = %q, want prof1", resp.ApplicantID)
	}
	if len(resp.RegistrationIDs) != 2 {
		t.Fatalf("got %d rows, want 2", len(resp.RegistrationIDs))
	}
	reg := stores.RegistrationStore.(*mockRegistrationStore)
	for _, id := range resp.RegistrationIDs {
		row := reg.rows[id]
		if row.PaymentStatus != registrationDomain.StatusPending {
			t.Errorf("row %s status = %q, want pending", id, row.PaymentStatus)
		}
		if row.PaymentFileID != "slip1" {
			t.Errorf("row %s slip = %q, want shared slip1", id, row.PaymentFileID)
		}
	}
}

func TestHandleJoinActivity_NewApplicantInline(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)

	body := `{"newApplicant":{"prefix":"เด็กหญิง","fullName":"สมหญิง รักเรียน","educationLevel":2,"school":"เตรียมอุดม","parentName":"แม่ สมหญิง","parentEmail":"mum@test.com"},"scheduleIds":["s2"]}`
	req := authRequest("POST", "/api/activities/act1/join", body, memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleJoinActivity(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		ApplicantID string `json:"applicantId"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	saved, err := stores.ApplicantStore.GetByID(context.Background(), resp.ApplicantID)
	if err != nil {
		t.Fatalf("inline profile not saved: %v", err)
	}
	if saved.AccountID != memberSession.AccountID {
		t.Errorf("profile owner = %q, want session account", saved.AccountID)
	}
}

func TestHandleJoinActivity_ProofRequiredForPaidSchedules(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	seedProfile(stores, "prof1", memberSession.AccountID)

	body := `{"applicantId":"prof1","scheduleIds":["s1"]}`
	req := authRequest("POST", "/api/activities/act1/join", body, memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleJoinActivity(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(stores.RegistrationStore.(*mockRegistrationStore).rows) != 0 {
		t.Error("no rows should be created")
	}
}

func TestHandleJoinActivity_FullScheduleConflicts(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	seedProfile(stores, "prof1", memberSession.AccountID)
	reg := stores.RegistrationStore.(*mockRegistrationStore)
	reg.rows["r1"] = registrationDomain.ScheduleRegistration{ID: "r1", ScheduleID: "s1", ApplicantID: "x1", PaymentStatus: registrationDomain.StatusPending}
	reg.rows["r2"] = registrationDomain.ScheduleRegistration{ID: "r2", ScheduleID: "s1", ApplicantID: "x2", PaymentStatus: registrationDomain.StatusApproved}

	body := `{"applicantId":"prof1","scheduleIds":["s1"],"proofFileId":"slip1"}`
	req := authRequest("POST", "/api/activities/act1/join", body, memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleJoinActivity(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want %d. Body: %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func TestHandleJoinActivity_ForeignProfileForbidden(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	seedProfile(stores, "prof-other", "someone-else")

	body := `{"applicantId":"prof-other","scheduleIds":["s2"]}`
	req := authRequest("POST", "/api/activities/act1/join", body, memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleJoinActivity(rec, req)
	// The wizard never loads foreign profiles, so selection fails fast.
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --- Tests: registrants / status ---

func seedDecidedRows(s *Stores) {
	seedOpenActivity(s)
	seedProfile(s, "prof1", "member-001")
	reg := s.RegistrationStore.(*mockRegistrationStore)
	now := time.Now().Add(-time.Hour)
	reg.rows["r1"] = registrationDomain.ScheduleRegistration{
		ID: "r1", ScheduleID: "s1", ApplicantID: "prof1", AccountID: "member-001",
		PaymentStatus: registrationDomain.StatusPending, PaymentFileID: "slip1", CreatedAt: now,
	}
	reg.rows["r2"] = registrationDomain.ScheduleRegistration{
		ID: "r2", ScheduleID: "s2", ApplicantID: "prof1", AccountID: "member-001",
		PaymentStatus: registrationDomain.StatusPending, PaymentFileID: "slip1", CreatedAt: now,
	}
}

func TestHandleListRegistrants_AggregatesPerApplicant(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)

	rec := httptest.NewRecorder()
	req := authRequest("GET", "/api/activities/act1/registrants", "", adminSession)
	req.SetPathValue("id", "act1")
	handleListRegistrants(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Registrants []registrantResponse `json:"registrants"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Registrants) != 1 {
		t.Fatalf("got %d registrants, want 1 aggregated", len(resp.Registrants))
	}
	r := resp.Registrants[0]
	if r.Amount != 500 {
		t.Errorf("amount = %d, want 500", r.Amount)
	}
	if len(r.RegistrationIDs) != 2 {
		t.Errorf("got %d row ids, want 2", len(r.RegistrationIDs))
	}
	if r.Status != registrationDomain.StatusPending {
		t.Errorf("status = %q, want pending", r.Status)
	}
}

func TestHandleListRegistrants_MemberForbidden(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)
	rec := httptest.NewRecorder()
	req := authRequest("GET", "/api/activities/act1/registrants", "", memberSession)
	req.SetPathValue("id", "act1")
	handleListRegistrants(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleSetRegistrationStatus_ApproveThenOppositeConflicts(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)

	req := authRequest("PATCH", "/api/registrations/r1/status", `{"status":"approved"}`, adminSession)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	handleSetRegistrationStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Same decision again is idempotent.
	req = authRequest("PATCH", "/api/registrations/r1/status", `{"status":"approved"}`, adminSession)
	req.SetPathValue("id", "r1")
	rec = httptest.NewRecorder()
	handleSetRegistrationStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("repeat approve got %d, want %d", rec.Code, http.StatusOK)
	}

	// The opposite decision is a conflict.
	req = authRequest("PATCH", "/api/registrations/r1/status", `{"status":"rejected"}`, adminSession)
	req.SetPathValue("id", "r1")
	rec = httptest.NewRecorder()
	handleSetRegistrationStatus(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("opposite decision got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestHandleSetRegistrationStatus_UnknownRow(t *testing.T) {
	stores = newTestStores()
	req := authRequest("PATCH", "/api/registrations/ghost/status", `{"status":"approved"}`, adminSession)
	req.SetPathValue("id", "ghost")
	rec := httptest.NewRecorder()
	handleSetRegistrationStatus(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDeleteRegistration_RemovesRow(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)
	req := authRequest("DELETE", "/api/registrations/r1", "", adminSession)
	req.SetPathValue("id", "r1")
	rec := httptest.NewRecorder()
	handleDeleteRegistration(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("got %d, want %d", rec.Code, http.StatusNoContent)
	}
	if _, ok := stores.RegistrationStore.(*mockRegistrationStore).rows["r1"]; ok {
		t.Error("row r1 still present")
	}
}

func TestHandleDeleteRegistration_UnknownRow(t *testing.T) {
	stores = newTestStores()
	req := authRequest("DELETE", "/api/registrations/ghost", "", adminSession)
	req.SetPathValue("id", "ghost")
	rec := httptest.NewRecorder()
	handleDeleteRegistration(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// --- Tests: applicants ---

func TestHandleSaveApplicant_CreateAndUpdate(t *testing.T) {
	stores = newTestStores()
	body := `{"prefix":"เด็กชาย","fullName":"สมชาย ใจดี","educationLevel":3,"school":"สวนกุหลาบวิทยาลัย","parentName":"สมศรี ใจดี","parentEmail":"parent@test.com"}`
	rec := httptest.NewRecorder()
	handleSaveApplicant(rec, authRequest("POST", "/api/applicants", body, memberSession))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create got %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	id := resp["id"]

	update := `{"prefix":"เด็กชาย","fullName":"สมชาย ใจดีมาก","educationLevel":4,"school":"สวนกุหลาบวิทยาลัย","parentName":"สมศรี ใจดี","parentEmail":"parent@test.com"}`
	req := authRequest("PUT", "/api/applicants/"+id, update, memberSession)
	req.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	handleUpdateApplicant(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	saved, _ := stores.ApplicantStore.GetByID(context.Background(), id)
	if saved.FullName != "สมชาย ใจดีมาก" || saved.EducationLevel != 4 {
		t.Errorf("update not applied: %+v", saved)
	}
}

func TestHandleUpdateApplicant_ForeignProfileForbidden(t *testing.T) {
	stores = newTestStores()
	seedProfile(stores, "prof-other", "someone-else")
	body := `{"prefix":"เด็กชาย","fullName":"ใครก็ได้","educationLevel":1,"school":"ที่ไหนสักแห่ง","parentName":"ใครสักคน","parentEmail":"p@test.com"}`
	req := authRequest("PUT", "/api/applicants/prof-other", body, memberSession)
	req.SetPathValue("id", "prof-other")
	rec := httptest.NewRecorder()
	handleUpdateApplicant(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleDeleteApplicant_BlockedByActiveRegistrations(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)
	req := authRequest("DELETE", "/api/applicants/prof1", "", memberSession)
	req.SetPathValue("id", "prof1")
	rec := httptest.NewRecorder()
	handleDeleteApplicant(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want %d", rec.Code, http.StatusConflict)
	}
}

// --- Tests: export / payment ---

func TestHandleExportRegistrants_CSV(t *testing.T) {
	stores = newTestStores()
	seedDecidedRows(stores)
	req := authRequest("GET", "/api/activities/act1/export?format=csv", "", adminSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleExportRegistrants(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("content type = %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "\xEF\xBB\xBF") {
		t.Error("missing UTF-8 BOM")
	}
	if !strings.Contains(body, "ชื่อ-นามสกุล") {
		t.Error("header row missing")
	}
	if !strings.Contains(body, "สมชาย ใจดี") {
		t.Error("registrant row missing")
	}
}

func TestHandleExportRegistrants_UnknownFormat(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	req := authRequest("GET", "/api/activities/act1/export?format=docx", "", adminSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handleExportRegistrants(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandlePaymentCode_BuildsPayloadForSelection(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	SetPromptPayTarget("0812345678")
	defer SetPromptPayTarget("")

	req := authRequest("GET", "/api/activities/act1/payment-code?schedule=s1", "", memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handlePaymentCode(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want %d. Body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Payload string `json:"payload"`
		Amount  int    `json:"amount"`
	}
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Amount != 500 {
		t.Errorf("amount = %d, want 500", resp.Amount)
	}
	if !strings.Contains(resp.Payload, "5406500.00") {
		t.Errorf("payload %q does not carry amount 500.00", resp.Payload)
	}
}

func TestHandlePaymentCode_FreeSelectionRejected(t *testing.T) {
	stores = newTestStores()
	seedOpenActivity(stores)
	SetPromptPayTarget("0812345678")
	defer SetPromptPayTarget("")

	req := authRequest("GET", "/api/activities/act1/payment-code?schedule=s2", "", memberSession)
	req.SetPathValue("id", "act1")
	rec := httptest.NewRecorder()
	handlePaymentCode(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// --- Tests: files ---

func TestHandleUploadThenDownloadFile(t *testing.T) {
	stores = newTestStores()
	disk, err := filestore.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	SetFilestore(disk)
	defer SetFilestore(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="slip.png"`},
		"Content-Type":        {"image/png"},
	})
	part.Write([]byte("\x89PNG fake image bytes"))
	mw.Close()

	req := authRequest("POST", "/api/files", "", memberSession)
	req.Body = io.NopCloser(&buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handleUploadFile(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload got %d, want %d. Body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp map[string]string
	json.NewDecoder(rec.Body).Decode(&resp)
	id := resp["id"]

	dl := authRequest("GET", "/api/files/"+id, "", memberSession)
	dl.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	handleDownloadFile(rec, dl)
	if rec.Code != http.StatusOK {
		t.Fatalf("download got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q, want image/png", got)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("fake image bytes")) {
		t.Error("downloaded bytes do not match upload")
	}
}

func TestHandleUploadFile_RejectsBadMimetype(t *testing.T) {
	stores = newTestStores()
	disk, err := filestore.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	SetFilestore(disk)
	defer SetFilestore(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="evil.exe"`},
		"Content-Type":        {"application/x-msdownload"},
	})
	part.Write([]byte("MZ"))
	mw.Close()

	req := authRequest("POST", "/api/files", "", memberSession)
	req.Body = io.NopCloser(&buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handleUploadFile(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
