package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grant-navi/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var grantColumns = []string{
	"id", "title", "organization", "category", "max_amount", "amount_text",
	"deadline_text", "deadline", "prefecture", "municipality", "target_text",
	"status", "created_at",
}

type GrantRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGrantRepository(db *pgxpool.Pool, logger *zap.Logger) *GrantRepository {
	return &GrantRepository{
		db:     db,
		logger: logger,
	}
}

func likePattern(s string) string {
	return "%" + s + "%"
}

// locationScoreExpr builds the primary sort key. Municipality match dominates
// (1000), then prefecture/ward match (200), then the nationwide floor (1).
// All literals are bound parameters.
func locationScoreExpr(c *models.SearchCriteria) squirrel.Sqlizer {
	var sb strings.Builder
	var args []any

	sb.WriteString("CASE")
	if c.Municipality != "" {
		sb.WriteString(" WHEN COALESCE(municipality, '') LIKE ? OR COALESCE(prefecture, '') LIKE ? THEN 1000")
		p := likePattern(c.Municipality)
		args = append(args, p, p)
	}
	if c.HasRegion() {
		conds := make([]string, 0, len(c.RegionSubstrings))
		for _, sub := range c.RegionSubstrings {
			conds = append(conds, "COALESCE(prefecture, '') LIKE ?")
			args = append(args, likePattern(sub))
		}
		sb.WriteString(" WHEN " + strings.Join(conds, " OR ") + " THEN 200")
	}
	sb.WriteString(" WHEN COALESCE(prefecture, '') = '' THEN 1 ELSE 0 END")

	return squirrel.Expr(sb.String(), args...)
}

// otherScoreExpr builds the secondary sort key: +5 per category keyword hit
// plus the amount-fit weight (3 inside the band, 1 when the grant has no
// amount).
func otherScoreExpr(c *models.SearchCriteria) squirrel.Sqlizer {
	var parts []string
	var args []any

	for _, kw := range c.CategoryKeywords {
		parts = append(parts, "(CASE WHEN category LIKE ? THEN 5 ELSE 0 END)")
		args = append(args, likePattern(kw))
	}

	switch {
	case c.Amount.Bounded() && c.Amount.Max > 0:
		parts = append(parts, "(CASE WHEN max_amount IS NULL THEN 1 WHEN max_amount >= ? AND max_amount <= ? THEN 3 ELSE 0 END)")
		args = append(args, c.Amount.Min, c.Amount.Max)
	case c.Amount.Bounded():
		parts = append(parts, "(CASE WHEN max_amount IS NULL THEN 1 WHEN max_amount >= ? THEN 3 ELSE 0 END)")
		args = append(args, c.Amount.Min)
	default:
		parts = append(parts, "(CASE WHEN max_amount IS NULL THEN 1 ELSE 0 END)")
	}

	return squirrel.Expr(strings.Join(parts, " + "), args...)
}

// buildCandidateQuery assembles the rule-stage candidate query: published,
// not expired, region-eligible rows ordered by the two computed sort keys
// with recency as the tie-break.
func buildCandidateQuery(c *models.SearchCriteria, limit int) (string, []any, error) {
	today := c.Now.Truncate(24 * time.Hour)

	query := squirrel.Select(grantColumns...).
		Column(squirrel.Alias(locationScoreExpr(c), "location_score")).
		Column(squirrel.Alias(otherScoreExpr(c), "other_score")).
		From("grants").
		Where(squirrel.Eq{"status": models.GrantStatusPublished}).
		Where(squirrel.Expr("(deadline IS NULL OR deadline >= ?)", today)).
		OrderBy("location_score DESC", "other_score DESC", "created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if c.HasRegion() {
		region := squirrel.Or{squirrel.Expr("COALESCE(prefecture, '') = ''")}
		for _, sub := range c.RegionSubstrings {
			p := likePattern(sub)
			region = append(region,
				squirrel.Expr("COALESCE(prefecture, '') LIKE ?", p),
				squirrel.Expr("COALESCE(municipality, '') LIKE ?", p),
			)
		}
		query = query.Where(region)
	}

	return query.ToSql()
}

// SearchCandidates runs the rule-based filter/scorer and returns up to limit
// grants, best rule score first.
func (r *GrantRepository) SearchCandidates(ctx context.Context, c *models.SearchCriteria, limit int) ([]models.Grant, error) {
	sql, args, err := buildCandidateQuery(c, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		var g models.Grant
		var locationScore, otherScore int
		if err := rows.Scan(
			&g.ID, &g.Title, &g.Organization, &g.Category, &g.MaxAmount, &g.AmountText,
			&g.DeadlineText, &g.Deadline, &g.Prefecture, &g.Municipality, &g.TargetText,
			&g.Status, &g.CreatedAt, &locationScore, &otherScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Candidate search completed",
		zap.Int("count", len(grants)),
		zap.String("region", c.RegionCode),
		zap.String("municipality", c.Municipality),
	)

	return grants, nil
}

// SearchRelaxed drops every predicate except published/not-expired and
// returns the most recent grants. Used when the strict pass comes back empty.
func (r *GrantRepository) SearchRelaxed(ctx context.Context, now time.Time, limit int) ([]models.Grant, error) {
	today := now.Truncate(24 * time.Hour)

	query := squirrel.Select(grantColumns...).
		From("grants").
		Where(squirrel.Eq{"status": models.GrantStatusPublished}).
		Where(squirrel.Expr("(deadline IS NULL OR deadline >= ?)", today)).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build relaxed query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relaxed candidates: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		var g models.Grant
		if err := rows.Scan(
			&g.ID, &g.Title, &g.Organization, &g.Category, &g.MaxAmount, &g.AmountText,
			&g.DeadlineText, &g.Deadline, &g.Prefecture, &g.Municipality, &g.TargetText,
			&g.Status, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan relaxed row: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Insert adds one catalog record. Used by the seed tool and import jobs.
func (r *GrantRepository) Insert(ctx context.Context, g *models.Grant) error {
	query := squirrel.Insert("grants").
		Columns("title", "organization", "category", "max_amount", "amount_text",
			"deadline_text", "deadline", "prefecture", "municipality", "target_text",
			"status", "created_at").
		Values(g.Title, g.Organization, g.Category, g.MaxAmount, g.AmountText,
			g.DeadlineText, g.Deadline, g.Prefecture, g.Municipality, g.TargetText,
			g.Status, g.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&g.ID)
}
