package registration

import (
	"context"
	"database/sql"
	"fmt"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/registration"
)

type SQLiteStore struct {
	db storage.SQLDB
}

func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = `id, schedule_id, applicant_id, account_id, payment_status, payment_file_id, created_at`

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ScheduleRegistration, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM schedule_registration WHERE id = ?`, id)
	reg, err := scanRegistration(row.Scan)
	if err == sql.ErrNoRows {
		return domain.ScheduleRegistration{}, ErrNotFound
	}
	if err != nil {
		return domain.ScheduleRegistration{}, fmt.Errorf("get registration %s: %w", id, err)
	}
	return reg, nil
}

func (s *SQLiteStore) CreateBatch(ctx context.Context, rows []domain.ScheduleRegistration, capacities map[string]int) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration batch: %w", err)
	}
	defer tx.Rollback()

	for _, reg := range rows {
		max := capacities[reg.ScheduleID]
		if max > 0 {
			var count int
			err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM schedule_registration
				 WHERE schedule_id = ? AND payment_status != ?`,
				reg.ScheduleID, domain.StatusRejected).Scan(&count)
			if err != nil {
				return fmt.Errorf("count schedule %s: %w", reg.ScheduleID, err)
			}
			if count >= max {
				return domain.ErrScheduleFull
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_registration
			 (id, schedule_id, applicant_id, account_id, payment_status, payment_file_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reg.ID, reg.ScheduleID, reg.ApplicantID, reg.AccountID,
			reg.PaymentStatus, nullable(reg.PaymentFileID),
			storage.FormatStoredTime(reg.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert registration %s: %w", reg.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration batch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, from, to string) (domain.ScheduleRegistration, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE schedule_registration SET payment_status = ?
		 WHERE id = ? AND payment_status = ?`, to, id, from)
	if err != nil {
		return domain.ScheduleRegistration{}, fmt.Errorf("update registration %s status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.ScheduleRegistration{}, fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		// Either the row is gone or someone else moved it off `from`
		// first. Distinguish so callers can answer 404 vs 409.
		if _, err := s.GetByID(ctx, id); err != nil {
			return domain.ScheduleRegistration{}, err
		}
		return domain.ScheduleRegistration{}, domain.ErrConflict
	}
	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM schedule_registration WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete registration %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListByActivityID(ctx context.Context, activityID string) ([]domain.ScheduleRegistration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.schedule_id, r.applicant_id, r.account_id,
		        r.payment_status, r.payment_file_id, r.created_at
		 FROM schedule_registration r
		 JOIN schedule s ON s.id = r.schedule_id
		 WHERE s.activity_id = ?
		 ORDER BY r.created_at, r.id`, activityID)
	if err != nil {
		return nil, fmt.Errorf("list registrations for activity %s: %w", activityID, err)
	}
	defer rows.Close()

	var result []domain.ScheduleRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		result = append(result, reg)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) CountBySchedule(ctx context.Context, scheduleID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schedule_registration
		 WHERE schedule_id = ? AND payment_status != ?`,
		scheduleID, domain.StatusRejected).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count schedule %s registrations: %w", scheduleID, err)
	}
	return count, nil
}

func (s *SQLiteStore) CountActiveByApplicant(ctx context.Context, applicantID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schedule_registration
		 WHERE applicant_id = ? AND payment_status != ?`,
		applicantID, domain.StatusRejected).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applicant %s registrations: %w", applicantID, err)
	}
	return count, nil
}

func scanRegistration(scan func(dest ...any) error) (domain.ScheduleRegistration, error) {
	var (
		reg        domain.ScheduleRegistration
		fileID     sql.NullString
		createdRaw string
	)
	err := scan(&reg.ID, &reg.ScheduleID, &reg.ApplicantID, &reg.AccountID,
		&reg.PaymentStatus, &fileID, &createdRaw)
	if err != nil {
		return domain.ScheduleRegistration{}, err
	}
	reg.PaymentFileID = fileID.String
	reg.CreatedAt, _ = storage.ParseStoredTime(createdRaw)
	return reg, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
