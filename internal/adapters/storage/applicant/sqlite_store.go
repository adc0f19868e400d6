package applicant

import (
	"context"
	"database/sql"
	"fmt"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/applicant"
)

const applicantColumns = "id, account_id, prefix, full_name, education_level, school, food_allergies, parent_name, parent_email, secondary_email, phone_number, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ApplicantStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Applicant by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Applicant, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+applicantColumns+" FROM applicant WHERE id = ?", id)
	entity, err := scanApplicant(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Applicant{}, ErrNotFound
	}
	return entity, err
}

// Save persists an Applicant to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update replaces all mutable fields)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Applicant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applicant (`+applicantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET prefix=excluded.prefix, full_name=excluded.full_name,
		 education_level=excluded.education_level, school=excluded.school,
		 food_allergies=excluded.food_allergies, parent_name=excluded.parent_name,
		 parent_email=excluded.parent_email, secondary_email=excluded.secondary_email,
		 phone_number=excluded.phone_number`,
		entity.ID, entity.AccountID, entity.Prefix, entity.FullName, entity.EducationLevel,
		entity.School, nullable(entity.FoodAllergies), entity.ParentName, entity.ParentEmail,
		nullable(entity.SecondaryEmail), nullable(entity.PhoneNumber),
		storage.FormatStoredTime(entity.CreatedAt),
	)
	return err
}

// Delete removes an Applicant from the database.
// PRE: id is non-empty; the caller has checked the registration guard
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM applicant WHERE id = ?", id)
	return err
}

// ListByAccountID retrieves the Applicants owned by an account.
// PRE: accountID is non-empty
// POST: Returns the account's applicants in creation order
func (s *SQLiteStore) ListByAccountID(ctx context.Context, accountID string) ([]domain.Applicant, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+applicantColumns+" FROM applicant WHERE account_id = ? ORDER BY created_at, id", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Applicant
	for rows.Next() {
		entity, err := scanApplicant(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanApplicant(scan func(dest ...any) error) (domain.Applicant, error) {
	var entity domain.Applicant
	var foodAllergies, secondaryEmail, phoneNumber sql.NullString
	var createdAt string
	err := scan(
		&entity.ID, &entity.AccountID, &entity.Prefix, &entity.FullName, &entity.EducationLevel,
		&entity.School, &foodAllergies, &entity.ParentName, &entity.ParentEmail,
		&secondaryEmail, &phoneNumber, &createdAt,
	)
	if err != nil {
		return domain.Applicant{}, err
	}
	entity.FoodAllergies = foodAllergies.String
	entity.SecondaryEmail = secondaryEmail.String
	entity.PhoneNumber = phoneNumber.String
	entity.CreatedAt, err = storage.ParseStoredTime(createdAt)
	if err != nil {
		return domain.Applicant{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
