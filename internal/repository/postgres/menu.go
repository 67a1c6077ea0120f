package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/orm"
)

// MenuRepository implements repository.MenuRepository on the menus table.
type MenuRepository struct {
	tm   *orm.TransactionManager
	rows *orm.Repository[models.Menu]
}

func NewMenuRepository(tm *orm.TransactionManager, middleware ...orm.Middleware) (*MenuRepository, error) {
	rows, err := orm.NewRepository[models.Menu](tm.DB(), menusTable, middleware...)
	if err != nil {
		return nil, err
	}
	return &MenuRepository{tm: tm, rows: rows}, nil
}

func (r *MenuRepository) List(ctx context.Context) ([]models.Menu, error) {
	menus, err := r.rows.FindAll(ctx)
	if err != nil {
		return nil, translate("list", "menu", 0, err)
	}
	return menus, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id int) (models.Menu, error) {
	menu, err := r.rows.FindByID(ctx, id)
	if err != nil {
		return models.Menu{}, translate("get", "menu", id, err)
	}
	return *menu, nil
}

func (r *MenuRepository) Create(ctx context.Context, menu models.Menu) (models.Menu, error) {
	created, err := r.rows.Insert(ctx, map[string]interface{}{
		"name":        menu.Name,
		"description": menu.Description,
		"price":       menu.Price,
		"image_url":   menu.ImageURL,
		"category_id": menu.CategoryID,
	})
	if err != nil {
		return models.Menu{}, translate("create", "menu", 0, err)
	}
	return *created, nil
}

// Update overwrites name, description and price. image_url and category_id are kept.
func (r *MenuRepository) Update(ctx context.Context, id int, menu models.Menu) (models.Menu, error) {
	var updated *models.Menu
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}

		var err error
		updated, err = rows.UpdateByID(ctx, id, map[string]interface{}{
			"name":        menu.Name,
			"description": menu.Description,
			"price":       menu.Price,
		})
		return err
	})
	if err != nil {
		return models.Menu{}, translate("update", "menu", id, err)
	}
	return *updated, nil
}

func (r *MenuRepository) Delete(ctx context.Context, id int) error {
	err := r.tm.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		rows := r.rows.WithExecutor(tx)
		if _, err := rows.FindByID(ctx, id); err != nil {
			return err
		}
		return rows.DeleteByID(ctx, id)
	})
	return translate("delete", "menu", id, err)
}
