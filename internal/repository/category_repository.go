package repository

import (
	"context"
	"fmt"

	"grant-navi/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) ListAll(ctx context.Context) ([]models.Category, error) {
	query := squirrel.Select("id", "code", "name", "sort_order").
		From("categories").
		OrderBy("sort_order ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryCategories(ctx, sql, args)
}

func (r *CategoryRepository) ListByCodes(ctx context.Context, codes []string) ([]models.Category, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query := squirrel.Select("id", "code", "name", "sort_order").
		From("categories").
		Where(squirrel.Eq{"code": codes}).
		OrderBy("sort_order ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	return r.queryCategories(ctx, sql, args)
}

func (r *CategoryRepository) queryCategories(ctx context.Context, sql string, args []any) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Insert adds one category master row. Used by the seed tool.
func (r *CategoryRepository) Insert(ctx context.Context, c *models.Category) error {
	query := squirrel.Insert("categories").
		Columns("code", "name", "sort_order").
		Values(c.Code, c.Name, c.SortOrder).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&c.ID)
}
