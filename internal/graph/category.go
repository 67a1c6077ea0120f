package graph

import (
	"context"

	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/repository"
)

const categoryQueryFields = `
	categories: [Category!]
`

const categoryMutationFields = `
	addCategory(category: CategoryInput!): Category
	updateCategory(categoryId: Int!, category: CategoryInput!): Category
	deleteCategory(categoryId: Int!): Boolean
`

// CategoryQuery resolves the read-only category fields.
type CategoryQuery struct {
	base *base
	repo repository.CategoryRepository
}

func (q *CategoryQuery) Categories(ctx context.Context) (*[]*categoryResolver, error) {
	return resolve(ctx, q.base, "categories", func(ctx context.Context) (*[]*categoryResolver, error) {
		categories, err := q.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return categoryList(categories), nil
	})
}

// CategoryMutation resolves the category write fields.
type CategoryMutation struct {
	base *base
	repo repository.CategoryRepository
}

func (m *CategoryMutation) AddCategory(ctx context.Context, args struct{ Category CategoryInput }) (*categoryResolver, error) {
	return resolve(ctx, m.base, "addCategory", func(ctx context.Context) (*categoryResolver, error) {
		created, err := m.repo.Create(ctx, args.Category.model())
		if err != nil {
			return nil, err
		}
		m.base.publish(ctx, "category", events.ActionCreated, created.ID)
		return &categoryResolver{c: created}, nil
	})
}

func (m *CategoryMutation) UpdateCategory(ctx context.Context, args struct {
	CategoryID int32
	Category   CategoryInput
}) (*categoryResolver, error) {
	return resolve(ctx, m.base, "updateCategory", func(ctx context.Context) (*categoryResolver, error) {
		if err := validateID("categoryId", args.CategoryID); err != nil {
			return nil, err
		}
		updated, err := m.repo.Update(ctx, int(args.CategoryID), args.Category.model())
		if err != nil {
			return nil, err
		}
		m.base.publish(ctx, "category", events.ActionUpdated, updated.ID)
		return &categoryResolver{c: updated}, nil
	})
}

func (m *CategoryMutation) DeleteCategory(ctx context.Context, args struct{ CategoryID int32 }) (*bool, error) {
	return resolve(ctx, m.base, "deleteCategory", func(ctx context.Context) (*bool, error) {
		if err := validateID("categoryId", args.CategoryID); err != nil {
			return nil, err
		}
		if err := m.repo.Delete(ctx, int(args.CategoryID)); err != nil {
			return nil, err
		}
		m.base.publish(ctx, "category", events.ActionDeleted, int(args.CategoryID))
		ok := true
		return &ok, nil
	})
}
