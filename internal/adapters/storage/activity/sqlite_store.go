package activity

import (
	"context"
	"database/sql"
	"fmt"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/activity"
)

const activityColumns = "id, title, description, description_short, thumbnail_file_id, registration_open_at, registration_close_at, approved, created_by, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ActivityStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Activity by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Activity, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+activityColumns+" FROM activity WHERE id = ?", id)
	entity, err := scanActivity(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Activity{}, ErrNotFound
	}
	return entity, err
}

// Save persists an Activity to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Activity) error {
	var thumbnail any
	if entity.ThumbnailFileID != "" {
		thumbnail = entity.ThumbnailFileID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title=excluded.title, description=excluded.description,
		 description_short=excluded.description_short, thumbnail_file_id=excluded.thumbnail_file_id,
		 registration_open_at=excluded.registration_open_at, registration_close_at=excluded.registration_close_at,
		 approved=excluded.approved`,
		entity.ID, entity.Title, entity.Description, entity.DescriptionShort, thumbnail,
		storage.FormatStoredTime(entity.RegistrationOpenAt), storage.FormatStoredTime(entity.RegistrationCloseAt),
		boolToInt(entity.Approved), entity.CreatedBy, storage.FormatStoredTime(entity.CreatedAt),
	)
	return err
}

// ListPublished retrieves approved activities in creation order.
func (s *SQLiteStore) ListPublished(ctx context.Context) ([]domain.Activity, error) {
	return s.queryActivities(ctx, "SELECT "+activityColumns+" FROM activity WHERE approved = 1 ORDER BY created_at, id")
}

// ListUnpublished retrieves activities still awaiting admin review.
func (s *SQLiteStore) ListUnpublished(ctx context.Context) ([]domain.Activity, error) {
	return s.queryActivities(ctx, "SELECT "+activityColumns+" FROM activity WHERE approved = 0 ORDER BY created_at, id")
}

// GetSchedule retrieves a Schedule by its ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrScheduleNotFound
func (s *SQLiteStore) GetSchedule(ctx context.Context, id string) (domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, activity_id, event_start_at, price, max_users FROM schedule WHERE id = ?", id)
	entity, err := scanSchedule(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Schedule{}, ErrScheduleNotFound
	}
	return entity, err
}

// SaveSchedule persists a Schedule to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) SaveSchedule(ctx context.Context, entity domain.Schedule) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedule (id, activity_id, event_start_at, price, max_users) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET event_start_at=excluded.event_start_at, price=excluded.price, max_users=excluded.max_users`,
		entity.ID, entity.ActivityID, storage.FormatStoredTime(entity.EventStartAt), entity.Price, entity.MaxUsers,
	)
	return err
}

// ListSchedules retrieves an activity's schedules ordered by start time.
// PRE: activityID is non-empty
// POST: Returns the schedules in session-date order
func (s *SQLiteStore) ListSchedules(ctx context.Context, activityID string) ([]domain.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, activity_id, event_start_at, price, max_users FROM schedule WHERE activity_id = ? ORDER BY event_start_at, id", activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Schedule
	for rows.Next() {
		entity, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) queryActivities(ctx context.Context, query string, args ...any) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Activity
	for rows.Next() {
		entity, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanActivity(scan func(dest ...any) error) (domain.Activity, error) {
	var entity domain.Activity
	var thumbnail sql.NullString
	var openAt, closeAt, createdAt string
	var approved int
	err := scan(
		&entity.ID, &entity.Title, &entity.Description, &entity.DescriptionShort, &thumbnail,
		&openAt, &closeAt, &approved, &entity.CreatedBy, &createdAt,
	)
	if err != nil {
		return domain.Activity{}, err
	}
	entity.ThumbnailFileID = thumbnail.String
	entity.Approved = approved != 0
	if entity.RegistrationOpenAt, err = storage.ParseStoredTime(openAt); err != nil {
		return domain.Activity{}, fmt.Errorf("failed to parse registration_open_at: %w", err)
	}
	if entity.RegistrationCloseAt, err = storage.ParseStoredTime(closeAt); err != nil {
		return domain.Activity{}, fmt.Errorf("failed to parse registration_close_at: %w", err)
	}
	if entity.CreatedAt, err = storage.ParseStoredTime(createdAt); err != nil {
		return domain.Activity{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return entity, nil
}

func scanSchedule(scan func(dest ...any) error) (domain.Schedule, error) {
	var entity domain.Schedule
	var startAt string
	err := scan(&entity.ID, &entity.ActivityID, &startAt, &entity.Price, &entity.MaxUsers)
	if err != nil {
		return domain.Schedule{}, err
	}
	entity.EventStartAt, err = storage.ParseStoredTime(startAt)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("failed to parse event_start_at: %w", err)
	}
	return entity, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
