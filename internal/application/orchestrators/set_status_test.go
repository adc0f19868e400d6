package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy/internal/domain/registration"
)

type mockStatusStore struct {
	rows map[string]registration.ScheduleRegistration
}

func newMockStatusStore(rows ...registration.ScheduleRegistration) *mockStatusStore {
	m := &mockStatusStore{rows: make(map[string]registration.ScheduleRegistration)}
	for _, r := range rows {
		m.rows[r.ID] = r
	}
	return m
}

func (m *mockStatusStore) GetByID(_ context.Context, id string) (registration.ScheduleRegistration, error) {
	r, ok := m.rows[id]
	if !ok {
		return registration.ScheduleRegistration{}, errors.New("registration not found")
	}
	return r, nil
}

func (m *mockStatusStore) UpdateStatus(_ context.Context, id, from, to string) (registration.ScheduleRegistration, error) {
	r, ok := m.rows[id]
	if !ok {
		return registration.ScheduleRegistration{}, errors.New("registration not found")
	}
	if r.PaymentStatus != from {
		return registration.ScheduleRegistration{}, registration.ErrConflict
	}
	r.PaymentStatus = to
	m.rows[id] = r
	return r, nil
}

func (m *mockStatusStore) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return errors.New("registration not found")
	}
	delete(m.rows, id)
	return nil
}

func pendingRow(id string) registration.ScheduleRegistration {
	return registration.ScheduleRegistration{
		ID:            id,
		ScheduleID:    "sch1",
		ApplicantID:   "ap1",
		AccountID:     "acc1",
		PaymentStatus: registration.StatusPending,
		CreatedAt:     time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestExecuteSetRegistrationStatus_ApprovesAllRows(t *testing.T) {
	store := newMockStatusStore(pendingRow("r1"), pendingRow("r2"))

	result, err := ExecuteSetRegistrationStatus(context.Background(), SetRegistrationStatusInput{
		RegistrationIDs: []string{"r1", "r2"},
		Status:          registration.StatusApproved,
	}, SetRegistrationStatusDeps{RegistrationStore: store})
	if err != nil {
		t.Fatalf("ExecuteSetRegistrationStatus failed: %v", err)
	}
	if len(result.Updated) != 2 {
		t.Fatalf("updated %d rows, want 2", len(result.Updated))
	}
	for _, id := range []string{"r1", "r2"} {
		if store.rows[id].PaymentStatus != registration.StatusApproved {
			t.Errorf("row %s = %q, want approved", id, store.rows[id].PaymentStatus)
		}
	}
}

func TestExecuteSetRegistrationStatus_RejectsInvalidStatus(t *testing.T) {
	store := newMockStatusStore(pendingRow("r1"))

	_, err := ExecuteSetRegistrationStatus(context.Background(), SetRegistrationStatusInput{
		RegistrationIDs: []string{"r1"},
		Status:          "pending",
	}, SetRegistrationStatusDeps{RegistrationStore: store})
	if !errors.Is(err, registration.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestExecuteSetRegistrationStatus_IdempotentWhenAlreadyDecided(t *testing.T) {
	row := pendingRow("r1")
	row.PaymentStatus = registration.StatusApproved
	store := newMockStatusStore(row)

	result, err := ExecuteSetRegistrationStatus(context.Background(), SetRegistrationStatusInput{
		RegistrationIDs: []string{"r1"},
		Status:          registration.StatusApproved,
	}, SetRegistrationStatusDeps{RegistrationStore: store})
	if err != nil {
		t.Fatalf("same-status retry should succeed, got %v", err)
	}
	if len(result.Updated) != 1 {
		t.Errorf("updated %d rows, want 1", len(result.Updated))
	}
}

func TestExecuteSetRegistrationStatus_ConflictOnOppositeDecision(t *testing.T) {
	row := pendingRow("r1")
	row.PaymentStatus = registration.StatusApproved
	store := newMockStatusStore(row)

	_, err := ExecuteSetRegistrationStatus(context.Background(), SetRegistrationStatusInput{
		RegistrationIDs: []string{"r1"},
		Status:          registration.StatusRejected,
	}, SetRegistrationStatusDeps{RegistrationStore: store})
	if !errors.Is(err, registration.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
	if store.rows["r1"].PaymentStatus != registration.StatusApproved {
		t.Error("losing decision must not overwrite the winner")
	}
}

func TestExecuteDeleteRegistration(t *testing.T) {
	store := newMockStatusStore(pendingRow("r1"), pendingRow("r2"))

	err := ExecuteDeleteRegistration(context.Background(), DeleteRegistrationInput{
		RegistrationIDs: []string{"r1", "r2"},
	}, DeleteRegistrationDeps{RegistrationStore: store})
	if err != nil {
		t.Fatalf("ExecuteDeleteRegistration failed: %v", err)
	}
	if len(store.rows) != 0 {
		t.Errorf("%d rows remain, want 0", len(store.rows))
	}
}
