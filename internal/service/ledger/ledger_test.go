package ledger

import (
	"context"
	"testing"
	"time"

	"projectpulse/internal/model"
	"projectpulse/internal/service/health"
)

type fakeStore struct {
	items []model.Expenditure
}

func (f *fakeStore) ListByProject(_ context.Context, projectID int) ([]model.Expenditure, error) {
	out := []model.Expenditure{}
	for _, e := range f.items {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func cents(s string) model.Cents {
	c, err := model.ParseCents(s)
	if err != nil {
		panic(err)
	}
	return c
}

func TestListPreservesInsertionOrder(t *testing.T) {
	base := time.Now()
	store := &fakeStore{items: []model.Expenditure{
		{ID: 1, ProjectID: 1, Amount: cents("300.00"), CreatedAt: base},
		{ID: 2, ProjectID: 1, Amount: cents("250.25"), CreatedAt: base.Add(time.Minute)},
		{ID: 3, ProjectID: 2, Amount: cents("999.99"), CreatedAt: base},
	}}
	v := NewView(store)

	items, err := v.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 1 || items[1].ID != 2 {
		t.Errorf("order = [%d %d], want [1 2]", items[0].ID, items[1].ID)
	}
}

func TestTotal(t *testing.T) {
	store := &fakeStore{items: []model.Expenditure{
		{ProjectID: 1, Amount: cents("300.00")},
		{ProjectID: 1, Amount: cents("250.25")},
	}}
	v := NewView(store)

	total, err := v.Total(context.Background(), 1)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.String() != "550.25" {
		t.Errorf("total = %s, want 550.25", total)
	}
}

// 账本总额必须与聚合器对同一输入算出的 ActualCost 完全一致。
func TestTotalMatchesAggregator(t *testing.T) {
	store := &fakeStore{items: []model.Expenditure{
		{ProjectID: 1, Amount: cents("0.10")},
		{ProjectID: 1, Amount: cents("0.20")},
		{ProjectID: 1, Amount: cents("0.30")},
		{ProjectID: 1, Amount: cents("123.45")},
	}}
	v := NewView(store)
	ctx := context.Background()

	total, err := v.Total(ctx, 1)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	items, err := v.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	report := health.ComputeHealth(nil, items, 0)
	if total != report.ActualCost {
		t.Fatalf("ledger total %s != aggregator actual cost %s", total, report.ActualCost)
	}
}
