// Package ledger 是单个项目支出的只读视图：
// 入账顺序列表 + 精确总额。总额与 health 聚合器的 ActualCost
// 在同一输入集上必须一致。
package ledger

import (
	"context"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
)

type Store interface {
	ListByProject(ctx context.Context, projectID int) ([]model.Expenditure, error)
}

type View struct {
	store Store
}

func NewView(store Store) *View {
	return &View{store: store}
}

// List 按创建时间升序返回（用户看到的即入账顺序）。
func (v *View) List(ctx context.Context, projectID int) ([]model.Expenditure, error) {
	items, err := v.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Transient("failed to list expenditures", err)
	}
	return items, nil
}

// Total 整数分精确求和。
func (v *View) Total(ctx context.Context, projectID int) (model.Cents, error) {
	items, err := v.store.ListByProject(ctx, projectID)
	if err != nil {
		return 0, apperr.Transient("failed to total expenditures", err)
	}
	var total model.Cents
	for _, e := range items {
		total += e.Amount
	}
	return total, nil
}
