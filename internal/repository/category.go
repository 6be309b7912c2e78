package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kormoapp/kormo/internal/domain"
)

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query, args, err := psql.
		Select("id", "name", "color", "description", "created_at").
		From("categories").
		Where(sq.Eq{"id": categoryID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for category: %w", err)
	}

	var category domain.Category
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&category.ID,
		&category.Name,
		&category.Color,
		&category.Description,
		&category.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("query category: %w", err)
	}

	return &category, nil
}

// List retrieves all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query, args, err := psql.
		Select("id", "name", "color", "description", "created_at").
		From("categories").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var category domain.Category
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Color,
			&category.Description,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return categories, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query, args, err := psql.
		Insert("categories").
		Columns("name", "color", "description").
		Values(category.Name, category.Color, category.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for category: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}
