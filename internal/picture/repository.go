package picture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a picture does not exist.
var ErrNotFound = errors.New("picture not found")

// ErrQuotaNotUpdated is returned when a space quota delta matched no row.
var ErrQuotaNotUpdated = errors.New("space quota update affected no rows")

// Repository handles all picture database operations. Space usage counters
// are only ever touched here, through relative updates committed in the same
// transaction as the picture write. Physical object deletion is not part of
// any transaction; see Cleaner.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const pictureColumns = `id, owner_id, space_id, url, thumbnail_url, name, introduction,
	size_bytes, width, height, aspect_ratio, format, tags,
	review_status, reviewer_id, review_message, reviewed_at, created_at, edited_at`

func scanPicture(row pgx.Row) (*Picture, error) {
	p := &Picture{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.SpaceID, &p.URL, &p.ThumbnailURL, &p.Name,
		&p.Introduction, &p.SizeBytes, &p.Width, &p.Height, &p.AspectRatio, &p.Format,
		&p.Tags, &p.ReviewStatus, &p.ReviewerID, &p.ReviewMessage, &p.ReviewedAt,
		&p.CreatedAt, &p.EditedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID fetches a picture by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Picture, error) {
	p, err := scanPicture(r.db.QueryRow(ctx,
		`SELECT `+pictureColumns+` FROM pictures WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get picture by id: %w", err)
	}
	return p, nil
}

// CountByURL counts pictures referencing the given object URL. Used by the
// cleaner's shared-URL dedup check.
func (r *Repository) CountByURL(ctx context.Context, url string) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM pictures WHERE url = $1`, url).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pictures by url: %w", err)
	}
	return n, nil
}

const insertPictureSQL = `INSERT INTO pictures (owner_id, space_id, url, thumbnail_url, name, introduction,
		size_bytes, width, height, aspect_ratio, format, tags,
		review_status, reviewer_id, review_message, reviewed_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	 RETURNING ` + pictureColumns

// updatePictureSQL persists space_id too: a replace may adopt a space when the
// picture had none, and the quota delta applied alongside assumes the row
// carries the assignment.
const updatePictureSQL = `UPDATE pictures SET space_id = $2, url = $3, thumbnail_url = $4, name = $5,
		size_bytes = $6, width = $7, height = $8, aspect_ratio = $9, format = $10,
		review_status = $11, reviewer_id = $12, review_message = $13, reviewed_at = $14,
		edited_at = now()
	 WHERE id = $1
	 RETURNING ` + pictureColumns

// SaveWithQuota upserts p and, when it belongs to a space, applies the given
// relative usage deltas to that space — all in one transaction. Partial
// application (row saved without the quota moving, or the reverse) cannot be
// observed.
func (r *Repository) SaveWithQuota(ctx context.Context, p *Picture, sizeDelta, countDelta int64) (*Picture, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin save tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var saved *Picture
	if p.ID == "" {
		saved, err = scanPicture(tx.QueryRow(ctx, insertPictureSQL,
			p.OwnerID, p.SpaceID, p.URL, p.ThumbnailURL, p.Name, p.Introduction,
			p.SizeBytes, p.Width, p.Height, p.AspectRatio, p.Format, p.Tags,
			p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt))
	} else {
		saved, err = scanPicture(tx.QueryRow(ctx, updatePictureSQL,
			p.ID, p.SpaceID, p.URL, p.ThumbnailURL, p.Name,
			p.SizeBytes, p.Width, p.Height, p.AspectRatio, p.Format,
			p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save picture: %w", err)
	}

	if p.SpaceID != nil {
		if err := adjustSpaceUsage(ctx, tx, *p.SpaceID, sizeDelta, countDelta); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit save tx: %w", err)
	}
	return saved, nil
}

// DeleteWithQuota removes p's row and, when it belongs to a space, returns
// its usage to the space — in one transaction. Physical object cleanup is the
// caller's concern and runs after this commit.
func (r *Repository) DeleteWithQuota(ctx context.Context, p *Picture) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM pictures WHERE id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("delete picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if p.SpaceID != nil {
		if err := adjustSpaceUsage(ctx, tx, *p.SpaceID, -p.SizeBytes, -1); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// adjustSpaceUsage applies relative deltas to a space's usage counters. The
// single-statement relative form is what keeps the counters correct under
// concurrent commits; never read-modify-write these columns.
func adjustSpaceUsage(ctx context.Context, tx pgx.Tx, spaceID string, sizeDelta, countDelta int64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE spaces
		 SET total_size = total_size + $2, total_count = total_count + $3, updated_at = now()
		 WHERE id = $1`,
		spaceID, sizeDelta, countDelta)
	if err != nil {
		return fmt.Errorf("adjust space usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaNotUpdated
	}
	return nil
}

// UpdateEditable persists the user-editable fields plus refreshed review
// parameters.
func (r *Repository) UpdateEditable(ctx context.Context, p *Picture) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pictures SET name = $2, introduction = $3, tags = $4,
			review_status = $5, reviewer_id = $6, review_message = $7, reviewed_at = $8,
			edited_at = now()
		 WHERE id = $1`,
		p.ID, p.Name, p.Introduction, p.Tags,
		p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateReview persists a review-status transition.
func (r *Repository) UpdateReview(ctx context.Context, p *Picture) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pictures SET review_status = $2, reviewer_id = $3,
			review_message = $4, reviewed_at = $5
		 WHERE id = $1`,
		p.ID, p.ReviewStatus, p.ReviewerID, p.ReviewMessage, p.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListQuery describes a paginated picture listing. Zero values mean
// "no filter". Decoding a request body into this struct and re-encoding it
// is what canonicalizes cache fingerprints.
type ListQuery struct {
	Current      int           `json:"current"`
	PageSize     int           `json:"pageSize"`
	OwnerID      string        `json:"ownerId,omitempty"`
	SpaceID      string        `json:"spaceId,omitempty"`
	NullSpaceID  bool          `json:"nullSpaceId,omitempty"`
	ReviewStatus *ReviewStatus `json:"reviewStatus,omitempty"`
	Name         string        `json:"name,omitempty"`
	Format       string        `json:"format,omitempty"`
	SearchText   string        `json:"searchText,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	SortField    string        `json:"sortField,omitempty"`
	SortOrder    string        `json:"sortOrder,omitempty"`
}

// Page is one page of listed pictures.
type Page struct {
	Records  []*Picture `json:"records"`
	Total    int64      `json:"total"`
	Current  int        `json:"current"`
	PageSize int        `json:"pageSize"`
}

var sortableFields = map[string]string{
	"createdAt": "created_at",
	"editedAt":  "edited_at",
	"name":      "name",
	"sizeBytes": "size_bytes",
	"width":     "width",
	"height":    "height",
}

// List runs a filtered, paginated query.
func (r *Repository) List(ctx context.Context, q ListQuery) (*Page, error) {
	where, args := buildListFilter(q)

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM pictures`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count pictures: %w", err)
	}

	order := "created_at DESC"
	if col, ok := sortableFields[q.SortField]; ok {
		dir := "DESC"
		if strings.EqualFold(q.SortOrder, "ascend") || strings.EqualFold(q.SortOrder, "asc") {
			dir = "ASC"
		}
		order = col + " " + dir
	}

	offset := (q.Current - 1) * q.PageSize
	args = append(args, q.PageSize, offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+pictureColumns+` FROM pictures`+where+
			` ORDER BY `+order+
			fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("list pictures: %w", err)
	}
	defer rows.Close()

	page := &Page{Records: []*Picture{}, Total: total, Current: q.Current, PageSize: q.PageSize}
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan picture: %w", err)
		}
		page.Records = append(page.Records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pictures: %w", err)
	}
	return page, nil
}

func buildListFilter(q ListQuery) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if q.OwnerID != "" {
		add("owner_id = $%d", q.OwnerID)
	}
	if q.SpaceID != "" {
		add("space_id = $%d", q.SpaceID)
	}
	if q.NullSpaceID {
		clauses = append(clauses, "space_id IS NULL")
	}
	if q.ReviewStatus != nil {
		add("review_status = $%d", *q.ReviewStatus)
	}
	if q.Name != "" {
		add("name ILIKE $%d", "%"+q.Name+"%")
	}
	if q.Format != "" {
		add("format = $%d", q.Format)
	}
	if q.SearchText != "" {
		args = append(args, "%"+q.SearchText+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR introduction ILIKE $%d)", len(args), len(args)))
	}
	// Tags are stored as a serialized JSON array; match each tag as a quoted
	// substring the way the source system queried them.
	for _, tag := range q.Tags {
		add("tags LIKE $%d", `%"`+tag+`"%`)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
