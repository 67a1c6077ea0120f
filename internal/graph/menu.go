package graph

import (
	"context"

	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/repository"
)

const menuQueryFields = `
	menus: [Menu!]
	menu(menuId: Int!): Menu
`

const menuMutationFields = `
	createMenu(menu: MenuInput!): Menu
	updateMenu(menuId: Int!, menu: MenuInput!): Menu
	deleteMenu(menuId: Int!): Boolean
`

// MenuQuery resolves the read-only menu fields.
type MenuQuery struct {
	base *base
	repo repository.MenuRepository
}

func (q *MenuQuery) Menus(ctx context.Context) (*[]*menuResolver, error) {
	return resolve(ctx, q.base, "menus", func(ctx context.Context) (*[]*menuResolver, error) {
		menus, err := q.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return menuList(menus), nil
	})
}

func (q *MenuQuery) Menu(ctx context.Context, args struct{ MenuID int32 }) (*menuResolver, error) {
	return resolve(ctx, q.base, "menu", func(ctx context.Context) (*menuResolver, error) {
		if err := validateID("menuId", args.MenuID); err != nil {
			return nil, err
		}
		menu, err := q.repo.GetByID(ctx, int(args.MenuID))
		if err != nil {
			return nil, err
		}
		return &menuResolver{m: menu}, nil
	})
}

// MenuMutation resolves the menu write fields.
type MenuMutation struct {
	base *base
	repo repository.MenuRepository
}

func (m *MenuMutation) CreateMenu(ctx context.Context, args struct{ Menu MenuInput }) (*menuResolver, error) {
	return resolve(ctx, m.base, "createMenu", func(ctx context.Context) (*menuResolver, error) {
		created, err := m.repo.Create(ctx, args.Menu.model())
		if err != nil {
			return nil, err
		}
		m.base.publish(ctx, "menu", events.ActionCreated, created.ID)
		return &menuResolver{m: created}, nil
	})
}

// UpdateMenu overwrites name, description and price; imageUrl and categoryId in the input
// are ignored.
func (m *MenuMutation) UpdateMenu(ctx context.Context, args struct {
	MenuID int32
	Menu   MenuInput
}) (*menuResolver, error) {
	return resolve(ctx, m.base, "updateMenu", func(ctx context.Context) (*menuResolver, error) {
		if err := validateID("menuId", args.MenuID); err != nil {
			return nil, err
		}
		updated, err := m.repo.Update(ctx, int(args.MenuID), args.Menu.model())
		if err != nil {
			return nil, err
		}
		m.base.publish(ctx, "menu", events.ActionUpdated, updated.ID)
		return &menuResolver{m: updated}, nil
	})
}

func (m *MenuMutation) DeleteMenu(ctx context.Context, args struct{ MenuID int32 }) (*bool, error) {
	return resolve(ctx, m.base, "deleteMenu", func(ctx context.Context) (*bool, error) {
		if err := validateID("menuId", args.MenuID); err != nil {
			return nil, err
		}
		if err := m.repo.Delete(ctx, int(args.MenuID)); err != nil {
			return nil, err
		}
		m.base.publish(ctx, "menu", events.ActionDeleted, int(args.MenuID))
		ok := true
		return &ok, nil
	})
}
