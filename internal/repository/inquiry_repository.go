package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/inquiry-service/internal/domain"
)

// ErrNotFound is returned when an inquiry or user does not exist.
var ErrNotFound = errors.New("record not found")

// SortField names a sortable inquiry column. The service layer enforces the
// allow-list; repositories only ever see these values.
type SortField string

const (
	SortByCreatedAt   SortField = "created_at"
	SortBySubject     SortField = "subject"
	SortByStatus      SortField = "status"
	SortByPriority    SortField = "priority"
	SortByRespondedAt SortField = "responded_at"
)

// InquiryFilter captures listing parameters for both audiences.
type InquiryFilter struct {
	AuthorID *string
	Status   *domain.InquiryStatus
	Type     *domain.InquiryType
	Priority *domain.InquiryPriority
	Search   *string
	// SearchResponse extends the search to the admin response text. Only the
	// student view sets it; admin search covers subject/body alone.
	SearchResponse bool
	SortBy         SortField
	SortDesc       bool
	Limit          int
	Offset         int
}

// InquiryBulkPatch describes a bulk status/priority write.
type InquiryBulkPatch struct {
	Status   *domain.InquiryStatus
	Priority *domain.InquiryPriority
}

// BulkOutcome reports bulk update counters.
type BulkOutcome struct {
	Matched  int64
	Modified int64
}

// InquiryRepository encapsulates inquiry persistence.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)
	Update(ctx context.Context, inquiry *domain.Inquiry) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	List(ctx context.Context, filter InquiryFilter) ([]domain.Inquiry, int64, error)
	UpdateMany(ctx context.Context, ids []string, patch InquiryBulkPatch) (BulkOutcome, error)
	Stats(ctx context.Context) (*domain.InquiryStats, error)
	AuthorSummary(ctx context.Context, authorID string) (*domain.AuthorSummary, error)
}

type inquiryRepository struct {
	pool *pgxpool.Pool
}

// NewInquiryRepository returns a Postgres-backed implementation.
func NewInquiryRepository(pool *pgxpool.Pool) InquiryRepository {
	return &inquiryRepository{pool: pool}
}

const inquiryColumns = `id, author_id, subject, body, type, status, priority,
               requested_course, response, responder_id, responded_at, is_read,
               created_at, updated_at`

func (r *inquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO inquiries (id, author_id, subject, body, type, status, priority, requested_course, is_read)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		inquiry.ID,
		inquiry.AuthorID,
		inquiry.Subject,
		inquiry.Body,
		inquiry.Type,
		inquiry.Status,
		inquiry.Priority,
		inquiry.RequestedCourse,
		inquiry.IsRead,
	).Scan(&inquiry.CreatedAt, &inquiry.UpdatedAt)
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*domain.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id=$1`
	var inquiry domain.Inquiry
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&inquiry)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inquiry, nil
}

// Update replaces the mutable fields of an inquiry. Whole-document
// replace-on-write: concurrent edits are last-write-wins.
func (r *inquiryRepository) Update(ctx context.Context, inquiry *domain.Inquiry) error {
	const query = `
        UPDATE inquiries SET status=$1, priority=$2, response=$3, responder_id=$4,
            responded_at=$5, is_read=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		inquiry.Status,
		inquiry.Priority,
		inquiry.Response,
		inquiry.ResponderID,
		inquiry.RespondedAt,
		inquiry.IsRead,
		inquiry.ID,
	).Scan(&inquiry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *inquiryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM inquiries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inquiryRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM inquiries WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *inquiryRepository) List(ctx context.Context, filter InquiryFilter) ([]domain.Inquiry, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		clauses = append(clauses, fmt.Sprintf("type=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		if filter.SearchResponse {
			clauses = append(clauses, fmt.Sprintf(
				"(LOWER(subject) LIKE %s OR LOWER(body) LIKE %s OR LOWER(COALESCE(response,'')) LIKE %s)",
				placeholder, placeholder, placeholder))
		} else {
			clauses = append(clauses, fmt.Sprintf(
				"(LOWER(subject) LIKE %s OR LOWER(body) LIKE %s)", placeholder, placeholder))
		}
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM inquiries WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM inquiries WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		inquiryColumns, where, sortBy, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanInquiries(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *inquiryRepository) UpdateMany(ctx context.Context, ids []string, patch InquiryBulkPatch) (BulkOutcome, error) {
	var outcome BulkOutcome
	if len(ids) == 0 {
		return outcome, nil
	}

	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM inquiries WHERE id = ANY($1)`, ids).Scan(&outcome.Matched); err != nil {
		return outcome, err
	}

	sets := []string{"updated_at=NOW()"}
	args := []any{ids}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
		// every status change marks the inquiry read
		sets = append(sets, "is_read=TRUE")
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		sets = append(sets, fmt.Sprintf("priority=$%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE inquiries SET %s WHERE id = ANY($1)`, strings.Join(sets, ", "))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return outcome, err
	}
	outcome.Modified = cmd.RowsAffected()
	return outcome, nil
}

func (r *inquiryRepository) Stats(ctx context.Context) (*domain.InquiryStats, error) {
	stats := &domain.InquiryStats{
		ByStatus:   make(map[domain.InquiryStatus]int64),
		ByType:     make(map[domain.InquiryType]int64),
		ByPriority: make(map[domain.InquiryPriority]int64),
	}

	const overview = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'),
               COUNT(*) FILTER (WHERE priority='urgent' AND status IN ('pending','in_progress'))
        FROM inquiries`
	if err := r.pool.QueryRow(ctx, overview).Scan(&stats.Total, &stats.Recent, &stats.UrgentOutstanding); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "status", func(key string, count int64) {
		stats.ByStatus[domain.InquiryStatus(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "type", func(key string, count int64) {
		stats.ByType[domain.InquiryType(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "priority", func(key string, count int64) {
		stats.ByPriority[domain.InquiryPriority(key)] = count
	}); err != nil {
		return nil, err
	}

	const performance = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM responded_at - created_at) / 3600.0), 0)::float8,
               COUNT(*)
        FROM inquiries
        WHERE status='resolved' AND responded_at IS NOT NULL`
	if err := r.pool.QueryRow(ctx, performance).Scan(&stats.AvgResponseHours, &stats.TotalResponses); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *inquiryRepository) groupCount(ctx context.Context, column string, assign func(key string, count int64)) error {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM inquiries GROUP BY %s`, column, column)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		assign(key, count)
	}
	return rows.Err()
}

func (r *inquiryRepository) AuthorSummary(ctx context.Context, authorID string) (*domain.AuthorSummary, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='pending'),
               COUNT(*) FILTER (WHERE status='in_progress'),
               COUNT(*) FILTER (WHERE status='resolved'),
               COUNT(*) FILTER (WHERE type='course_request'),
               COUNT(*) FILTER (WHERE type='technical'),
               COUNT(*) FILTER (WHERE is_read = FALSE),
               COALESCE(AVG(EXTRACT(EPOCH FROM responded_at - created_at) / 86400.0)
                   FILTER (WHERE responded_at IS NOT NULL), 0)::float8
        FROM inquiries WHERE author_id=$1`
	var summary domain.AuthorSummary
	if err := r.pool.QueryRow(ctx, query, authorID).Scan(
		&summary.Total,
		&summary.PendingCount,
		&summary.InProgressCount,
		&summary.ResolvedCount,
		&summary.CourseRequestCount,
		&summary.TechnicalCount,
		&summary.UnreadCount,
		&summary.AvgResponseDays,
	); err != nil {
		return nil, err
	}
	return &summary, nil
}

func scanTargets(inquiry *domain.Inquiry) []any {
	return []any{
		&inquiry.ID,
		&inquiry.AuthorID,
		&inquiry.Subject,
		&inquiry.Body,
		&inquiry.Type,
		&inquiry.Status,
		&inquiry.Priority,
		&inquiry.RequestedCourse,
		&inquiry.Response,
		&inquiry.ResponderID,
		&inquiry.RespondedAt,
		&inquiry.IsRead,
		&inquiry.CreatedAt,
		&inquiry.UpdatedAt,
	}
}

func scanInquiries(rows pgx.Rows) ([]domain.Inquiry, error) {
	var result []domain.Inquiry
	for rows.Next() {
		var inquiry domain.Inquiry
		if err := rows.Scan(scanTargets(&inquiry)...); err != nil {
			return nil, err
		}
		result = append(result, inquiry)
	}
	return result, rows.Err()
}
