package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/orm"
)

// CategoryRepository implements repository.CategoryRepository on the categories table.
type CategoryRepository struct {
	tm   *orm.TransactionManager
	rows *orm.Repository[models.Category]
}

func NewCategoryRepository(tm *orm.TransactionManager, middleware ...orm.Middleware) (*CategoryRepository, error) {
	rows, err := orm.NewRepository[models.Category](tm.DB(), categoriesTable, middleware...)
	if err != nil {
		return nil, err
	}
	return &CategoryRepository{tm: tm, rows: rows}, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories, err := r.rows.FindAll(ctx)
	if err != nil {
		return nil, translate("list", "category", 0, err)
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	created, err := r.rows.Insert(ctx, map[string]interface{}{
		"name":      category.Name,
		"image_url": category.ImageURL,
	})
	if err != nil {
		return models.Category{}, translate("create", "category", 0, err)
	}
	return *created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int, category models.Category) (models.Category, error) {
	var updated *models.Category
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}

		var err error
		updated, err = rows.UpdateByID(ctx, id, map[string]interface{}{
			"name":      category.Name,
			"image_url": category.ImageURL,
		})
		return err
	})
	if err != nil {
		return models.Category{}, translate("update", "category", id, err)
	}
	return *updated, nil
}

// Delete removes the category; the database cascades to its menus.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}
		return rows.DeleteByID(ctx, id)
	})
	return translate("delete", "category", id, err)
}
