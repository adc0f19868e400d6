package file

import (
	"context"
	"database/sql"
	"fmt"

	"academy/internal/adapters/storage"
	domain "academy/internal/domain/file"
)

type SQLiteStore struct {
	db storage.SQLDB
}

func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.StoredFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, mimetype, size, path, created_at
		 FROM stored_file WHERE id = ?`, id)

	var (
		f          domain.StoredFile
		createdRaw string
	)
	err := row.Scan(&f.ID, &f.Filename, &f.Mimetype, &f.Size, &f.Path, &createdRaw)
	if err == sql.ErrNoRows {
		return domain.StoredFile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("get file %s: %w", id, err)
	}
	f.CreatedAt, _ = storage.ParseStoredTime(createdRaw)
	return f, nil
}

func (s *SQLiteStore) Save(ctx context.Context, f domain.StoredFile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stored_file (id, filename, mimetype, size, path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			mimetype = excluded.mimetype,
			size = excluded.size,
			path = excluded.path`,
		f.ID, f.Filename, f.Mimetype, f.Size, f.Path,
		storage.FormatStoredTime(f.CreatedAt))
	if err != nil {
		return fmt.Errorf("save file %s: %w", f.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM stored_file WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
