package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResourceRepository struct {
	*base.Repository
}

func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{Repository: base.NewRepository(pool)}
}

func (r *ResourceRepository) list(ctx context.Context, query string, args ...any) ([]*model.Resource, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	resources, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Resource, error) {
		var res model.Resource
		err := row.Scan(&res.ID, &res.CourseID, &res.Title, &res.File, &res.URL)
		return &res, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan resources: %w", err)
	}
	return resources, nil
}

// ListByCourse получает материалы курса
func (r *ResourceRepository) ListByCourse(ctx context.Context, courseID int64) ([]*model.Resource, error) {
	resources, err := r.list(ctx, `
		SELECT id, course_id, title, file, url
		FROM resources
		WHERE course_id = $1
		ORDER BY id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list resources by course: %w", err)
	}
	return resources, nil
}

// List получает все материалы
func (r *ResourceRepository) List(ctx context.Context) ([]*model.Resource, error) {
	resources, err := r.list(ctx, `SELECT id, course_id, title, file, url FROM resources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// GetByID получает материал по ID
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*model.Resource, error) {
	var res model.Resource
	err := r.QueryRow(ctx, `SELECT id, course_id, title, file, url FROM resources WHERE id = $1`, id).
		Scan(&res.ID, &res.CourseID, &res.Title, &res.File, &res.URL)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &res, nil
}
