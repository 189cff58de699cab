package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorhub/internal/model"
	"github.com/Freeeeeet/tutorhub/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const dbsColumns = `id, tutor_id, certificate_number, issue_date, expiry_date, file_key, file_name,
	content_type, size_bytes, status, rejection_reason, verified_by, verified_at, created_at`

type DBSRepository struct {
	*base.Repository
}

func NewDBSRepository(b *base.Repository) *DBSRepository {
	return &DBSRepository{Repository: b}
}

func scanDBSRecord(row pgx.Row) (*model.DBSRecord, error) {
	var rec model.DBSRecord
	err := row.Scan(
		&rec.ID,
		&rec.TutorID,
		&rec.CertificateNumber,
		&rec.IssueDate,
		&rec.ExpiryDate,
		&rec.FileKey,
		&rec.FileName,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.Status,
		&rec.RejectionReason,
		&rec.VerifiedBy,
		&rec.VerifiedAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts the metadata row. The id is chosen by the caller so the
// blob key can be derived from it before the insert.
func (r *DBSRepository) Create(ctx context.Context, rec *model.DBSRecord) error {
	query := `
		INSERT INTO dbs_records (id, tutor_id, certificate_number, issue_date, expiry_date, file_key,
			file_name, content_type, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		rec.ID,
		rec.TutorID,
		rec.CertificateNumber,
		rec.IssueDate,
		rec.ExpiryDate,
		rec.FileKey,
		rec.FileName,
		rec.ContentType,
		rec.SizeBytes,
		rec.Status,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("create dbs record: %w", err)
	}

	return nil
}

// GetByID returns the record or nil when it does not exist
func (r *DBSRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DBSRecord, error) {
	rec, err := scanDBSRecord(r.QueryRow(ctx, `SELECT `+dbsColumns+` FROM dbs_records WHERE id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dbs record: %w", err)
	}

	return rec, nil
}

// GetByIDForUpdate locks the record for the surrounding transaction
func (r *DBSRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DBSRecord, error) {
	rec, err := scanDBSRecord(r.QueryRow(ctx, `SELECT `+dbsColumns+` FROM dbs_records WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock dbs record: %w", err)
	}

	return rec, nil
}

// ListByTutor returns a tutor's certificates, newest first
func (r *DBSRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*model.DBSRecord, error) {
	return r.list(ctx, "list dbs by tutor",
		`SELECT `+dbsColumns+` FROM dbs_records WHERE tutor_id = $1 ORDER BY created_at DESC`, tutorID)
}

// ListByStatus returns records in a status, oldest first (review queue order)
func (r *DBSRepository) ListByStatus(ctx context.Context, status model.DBSStatus) ([]*model.DBSRecord, error) {
	return r.list(ctx, "list dbs by status",
		`SELECT `+dbsColumns+` FROM dbs_records WHERE status = $1 ORDER BY created_at ASC`, status)
}

// ListByTutors returns all records for a set of tutors
func (r *DBSRepository) ListByTutors(ctx context.Context, tutorIDs []uuid.UUID) ([]*model.DBSRecord, error) {
	if len(tutorIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, "list dbs by tutors",
		`SELECT `+dbsColumns+` FROM dbs_records WHERE tutor_id = ANY($1) ORDER BY created_at DESC`, tutorIDs)
}

func (r *DBSRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.DBSRecord, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := base.CollectRows(rows, scanDBSRecord)
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}

	return records, nil
}

// UpdateReview stores the admin decision
func (r *DBSRepository) UpdateReview(ctx context.Context, rec *model.DBSRecord) error {
	query := `
		UPDATE dbs_records
		SET status = $1, rejection_reason = $2, verified_by = $3, verified_at = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(ctx, query,
		rec.Status, rec.RejectionReason, rec.VerifiedBy, rec.VerifiedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("update dbs review: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("dbs record not found")
	}

	return nil
}

// ExpireVerified flips verified records whose expiry date is before now
// and returns the rows it changed
func (r *DBSRepository) ExpireVerified(ctx context.Context, now time.Time) ([]*model.DBSRecord, error) {
	query := `
		UPDATE dbs_records
		SET status = $1
		WHERE status = $2 AND expiry_date < $3
		RETURNING ` + dbsColumns

	return r.list(ctx, "expire dbs records", query, model.DBSStatusExpired, model.DBSStatusVerified, now)
}
