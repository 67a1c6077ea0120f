package memory

import (
	"context"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/repository"
)

// MenuRepository implements repository.MenuRepository over a Store. CategoryID is not checked
// against existing categories.
type MenuRepository struct {
	store *Store
}

func NewMenuRepository(store *Store) *MenuRepository {
	return &MenuRepository{store: store}
}

func (r *MenuRepository) List(ctx context.Context) ([]models.Menu, error) {
	var out []models.Menu
	err := r.store.read(ctx, func() error {
		out = make([]models.Menu, len(r.store.menus))
		copy(out, r.store.menus)
		return nil
	})
	return out, err
}

func (r *MenuRepository) GetByID(ctx context.Context, id int) (models.Menu, error) {
	var found models.Menu
	err := r.store.read(ctx, func() error {
		for _, m := range r.store.menus {
			if m.ID == id {
				found = m
				return nil
			}
		}
		return repository.NotFound("menu", id)
	})
	return found, err
}

func (r *MenuRepository) Create(ctx context.Context, menu models.Menu) (models.Menu, error) {
	err := r.store.write(ctx, func() error {
		id, err := allocate(&r.store.nextMenuID, "menu")
		if err != nil {
			return err
		}
		menu.ID = id
		menu.Category = nil
		r.store.menus = append(r.store.menus, menu)
		return nil
	})
	if err != nil {
		return models.Menu{}, err
	}
	return menu, nil
}

func (r *MenuRepository) Update(ctx context.Context, id int, menu models.Menu) (models.Menu, error) {
	var updated models.Menu
	err := r.store.write(ctx, func() error {
		for i := range r.store.menus {
			if r.store.menus[i].ID == id {
				repository.ApplyMenuUpdate(&r.store.menus[i], menu)
				updated = r.store.menus[i]
				return nil
			}
		}
		return repository.NotFound("menu", id)
	})
	return updated, err
}

func (r *MenuRepository) Delete(ctx context.Context, id int) error {
	return r.store.write(ctx, func() error {
		for i := range r.store.menus {
			if r.store.menus[i].ID == id {
				r.store.menus = append(r.store.menus[:i], r.store.menus[i+1:]...)
				return nil
			}
		}
		return repository.NotFound("menu", id)
	})
}
