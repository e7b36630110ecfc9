package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-delivery-engine/internal/apperr"
	"service-delivery-engine/internal/domain"
)

// CandidateRepo stores delivery candidates.
type CandidateRepo struct{ db *pgxpool.Pool }

// NewCandidateRepo creates a new CandidateRepo.
func NewCandidateRepo(db *pgxpool.Pool) *CandidateRepo { return &CandidateRepo{db: db} }

const candidateColumns = `id, name, lat, lng, radius_km, is_active, windows`

// windowRow is the JSONB shape of a service window.
type windowRow struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func encodeWindows(ws []domain.ServiceWindow) ([]byte, error) {
	rows := make([]windowRow, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, windowRow{Day: int(w.Day), Start: w.Start, End: w.End})
	}
	return json.Marshal(rows)
}

func decodeWindows(raw []byte) ([]domain.ServiceWindow, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []windowRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.ServiceWindow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ServiceWindow{Day: time.Weekday(r.Day), Start: r.Start, End: r.End})
	}
	return out, nil
}

func scanCandidate(row pgx.Row) (domain.DeliveryCandidate, error) {
	var (
		c   domain.DeliveryCandidate
		raw []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Location.Lat, &c.Location.Lng, &c.RadiusKm, &c.IsActive, &raw); err != nil {
		return c, err
	}
	ws, err := decodeWindows(raw)
	if err != nil {
		return c, fmt.Errorf("decode windows of candidate %d: %w", c.ID, err)
	}
	c.Windows = ws
	return c, nil
}

// Get returns a candidate by its ID, or nil when it does not exist.
func (r *CandidateRepo) Get(ctx context.Context, id int64) (*domain.DeliveryCandidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}
	return &c, nil
}

// List returns candidates ordered by id. If limit/offset are nil, returns the full list.
func (r *CandidateRepo) List(ctx context.Context, limit, offset *int) ([]domain.DeliveryCandidate, error) {
	q := `SELECT ` + candidateColumns + ` FROM candidates ORDER BY id`
	args := make([]any, 0, 2)
	if limit != nil {
		q += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, *limit)
	}
	if offset != nil {
		q += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, *offset)
	}
	capacity := 0
	if limit != nil && *limit > 0 {
		capacity = *limit
	}
	return r.query(ctx, capacity, q, args...)
}

// ListActive returns all candidates flagged active. Window and radius checks happen in the caller.
func (r *CandidateRepo) ListActive(ctx context.Context) ([]domain.DeliveryCandidate, error) {
	return r.query(ctx, 0, `SELECT `+candidateColumns+` FROM candidates WHERE is_active ORDER BY id`)
}

func (r *CandidateRepo) query(ctx context.Context, capacity int, q string, args ...any) ([]domain.DeliveryCandidate, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DeliveryCandidate, 0, capacity)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a candidate and returns its generated ID.
func (r *CandidateRepo) Create(ctx context.Context, c *domain.DeliveryCandidate) (int64, error) {
	windows, err := encodeWindows(c.Windows)
	if err != nil {
		return 0, fmt.Errorf("encode windows: %w", err)
	}
	var id int64
	err = r.db.QueryRow(ctx,
		`INSERT INTO candidates(name, lat, lng, radius_km, is_active, windows)
		 VALUES($1,$2,$3,$4,$5,$6) RETURNING id`,
		c.Name, c.Location.Lat, c.Location.Lng, c.RadiusKm, c.IsActive, windows).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, fmt.Errorf("create candidate: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update and returns true if a row was affected.
func (r *CandidateRepo) UpdatePartial(ctx context.Context, u domain.PartialCandidateUpdate) (bool, error) {
	var lat, lng *float64
	if u.Location != nil {
		lat, lng = &u.Location.Lat, &u.Location.Lng
	}
	var windows []byte
	if u.Windows != nil {
		b, err := encodeWindows(*u.Windows)
		if err != nil {
			return false, fmt.Errorf("encode windows: %w", err)
		}
		windows = b
	}

	ct, err := r.db.Exec(ctx, `
        UPDATE candidates
        SET
            name       = COALESCE($2, name),
            lat        = COALESCE($3, lat),
            lng        = COALESCE($4, lng),
            radius_km  = COALESCE($5, radius_km),
            is_active  = COALESCE($6, is_active),
            windows    = COALESCE($7::jsonb, windows),
            updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, lat, lng, u.RadiusKm, u.IsActive, windows)
	if err != nil {
		if IsDuplicate(err) {
			return false, apperr.ErrConflict
		}
		return false, fmt.Errorf("update candidate %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}
