package memory

import (
	"context"

	"github.com/eleven-am/bistro/internal/models"
	"github.com/eleven-am/bistro/internal/repository"
)

// CategoryRepository implements repository.CategoryRepository over a Store.
type CategoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.store.read(ctx, func() error {
		out = make([]models.Category, len(r.store.categories))
		copy(out, r.store.categories)
		return nil
	})
	return out, err
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	err := r.store.write(ctx, func() error {
		id, err := allocate(&r.store.nextCategoryID, "category")
		if err != nil {
			return err
		}
		category.ID = id
		category.Menus = nil
		r.store.categories = append(r.store.categories, category)
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int, category models.Category) (models.Category, error) {
	var updated models.Category
	err := r.store.write(ctx, func() error {
		for i := range r.store.categories {
			if r.store.categories[i].ID == id {
				repository.ApplyCategoryUpdate(&r.store.categories[i], category)
				updated = r.store.categories[i]
				return nil
			}
		}
		return repository.NotFound("category", id)
	})
	return updated, err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	return r.store.write(ctx, func() error {
		for i := range r.store.categories {
			if r.store.categories[i].ID == id {
				r.store.categories = append(r.store.categories[:i], r.store.categories[i+1:]...)
				return nil
			}
		}
		return repository.NotFound("category", id)
	})
}
