package riskissue

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
	"projectpulse/internal/service/authz"
)

type fakeStore struct {
	items  map[int]*model.RiskIssue
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[int]*model.RiskIssue{}, nextID: 1}
}

func (f *fakeStore) Insert(_ context.Context, ri *model.RiskIssue) (int, error) {
	ri.ID = f.nextID
	ri.Version = 1
	ri.CreatedAt = time.Now()
	ri.UpdatedAt = ri.CreatedAt
	f.nextID++
	cp := *ri
	f.items[ri.ID] = &cp
	return ri.ID, nil
}

func (f *fakeStore) FindByID(_ context.Context, id int) (*model.RiskIssue, error) {
	ri, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ri
	return &cp, nil
}

func (f *fakeStore) ListByProject(_ context.Context, projectID int) ([]model.RiskIssue, error) {
	// 最新在前
	out := []model.RiskIssue{}
	for id := f.nextID - 1; id >= 1; id-- {
		if ri, ok := f.items[id]; ok && ri.ProjectID == projectID {
			out = append(out, *ri)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int, status model.RiskIssueStatus, version int) (bool, error) {
	ri, ok := f.items[id]
	if !ok || ri.Version != version {
		return false, nil
	}
	ri.Status = status
	ri.Version++
	ri.UpdatedAt = time.Now()
	return true, nil
}

type fakeProjects struct {
	projects map[int]*model.Project
}

func (f *fakeProjects) FindByID(_ context.Context, id int) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(routingKey string, _ any) error {
	f.published = append(f.published, routingKey)
	return nil
}

const (
	ownerID    = 42
	observerID = 7
)

func newManager(t *testing.T) (*Manager, *fakeStore, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	projects := &fakeProjects{projects: map[int]*model.Project{
		1: {ID: 1, OwnerID: ownerID, Name: "rollout"},
	}}
	pub := &fakePublisher{}
	m := NewManager(store, projects, authz.NewGate(), pub, zap.NewNop())
	return m, store, pub
}

func validInput() CreateInput {
	return CreateInput{
		Type:        model.TypeRisk,
		Title:       "vendor delay",
		Description: "supplier slipping",
		ImpactLevel: model.ImpactHigh,
	}
}

func TestCreateForcesOpenStatus(t *testing.T) {
	m, _, pub := newManager(t)

	ri, err := m.Create(context.Background(), 1, ownerID, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ri.Status != model.StatusOpen {
		t.Errorf("status = %s, want open", ri.Status)
	}
	if ri.ID == 0 {
		t.Error("expected server-assigned id")
	}
	if len(pub.published) != 1 {
		t.Errorf("expected 1 activity event, got %d", len(pub.published))
	}
}

func TestCreateThenListNewestFirst(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	older, err := m.Create(ctx, 1, ownerID, validInput())
	if err != nil {
		t.Fatalf("create older: %v", err)
	}

	in := validInput()
	in.Title = "budget overrun"
	in.Type = model.TypeIssue
	newer, err := m.Create(ctx, 1, ownerID, in)
	if err != nil {
		t.Fatalf("create newer: %v", err)
	}

	items, err := m.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != newer.ID || items[1].ID != older.ID {
		t.Errorf("expected newest first, got order %d, %d", items[0].ID, items[1].ID)
	}
	if items[0].Status != model.StatusOpen {
		t.Errorf("fresh record should list as open, got %s", items[0].Status)
	}
}

func TestCreateValidation(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "" }},
		{"bad type", func(in *CreateInput) { in.Type = "hazard" }},
		{"bad impact", func(in *CreateInput) { in.ImpactLevel = "critical" }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validInput()
			c.mutate(&in)
			_, err := m.Create(ctx, 1, ownerID, in)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateUnauthorized(t *testing.T) {
	m, store, pub := newManager(t)

	_, err := m.Create(context.Background(), 1, observerID, validInput())
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(store.items) != 0 {
		t.Error("store must be unchanged after denied create")
	}
	if len(pub.published) != 0 {
		t.Error("no activity event on denied create")
	}
}

func TestSetStatusIdempotent(t *testing.T) {
	m, _, pub := newManager(t)
	ctx := context.Background()

	ri, err := m.Create(ctx, 1, ownerID, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed)
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
	eventsAfterFirst := len(pub.published)

	second, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed)
	if err != nil {
		t.Fatalf("second close must be a no-op success, got %v", err)
	}

	if first.Status != model.StatusClosed || second.Status != model.StatusClosed {
		t.Error("both calls should report closed")
	}
	if len(pub.published) != eventsAfterFirst {
		t.Error("repeated identical transition must not emit a duplicate event")
	}
	if second.Version != first.Version {
		t.Errorf("no-op must not bump version: first=%d second=%d", first.Version, second.Version)
	}
}

func TestSetStatusReopen(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	ri, _ := m.Create(ctx, 1, ownerID, validInput())
	if _, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusOpen)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != model.StatusOpen {
		t.Errorf("status = %s, want open", reopened.Status)
	}
}

func TestSetStatusOnlyChangesStatus(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()

	ri, _ := m.Create(ctx, 1, ownerID, validInput())
	updated, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	stored := store.items[ri.ID]
	if updated.Title != ri.Title || stored.Title != ri.Title {
		t.Error("title must be immutable")
	}
	if updated.Description != ri.Description || updated.ImpactLevel != ri.ImpactLevel || updated.Type != ri.Type {
		t.Error("non-status fields must be immutable")
	}
}

func TestSetStatusUnauthorizedLeavesRecord(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()

	ri, _ := m.Create(ctx, 1, ownerID, validInput())

	_, err := m.SetStatus(ctx, ri.ID, observerID, model.StatusClosed)
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.items[ri.ID].Status != model.StatusOpen {
		t.Error("stored record must be unchanged after denied mutation")
	}
}

func TestSetStatusNotFound(t *testing.T) {
	m, _, _ := newManager(t)

	_, err := m.SetStatus(context.Background(), 999, ownerID, model.StatusClosed)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusConflictOnConcurrentWrite(t *testing.T) {
	m, store, _ := newManager(t)
	ctx := context.Background()

	ri, _ := m.Create(ctx, 1, ownerID, validInput())

	// 模拟另一个写者抢先提交，version 前移
	store.items[ri.ID].Version++

	_, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

// 风险和问题是同一个状态机，只差一个标签。
func TestLifecycleIdenticalAcrossTypes(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	for _, typ := range []model.RiskIssueType{model.TypeRisk, model.TypeIssue} {
		in := validInput()
		in.Type = typ
		ri, err := m.Create(ctx, 1, ownerID, in)
		if err != nil {
			t.Fatalf("create %s: %v", typ, err)
		}
		closed, err := m.SetStatus(ctx, ri.ID, ownerID, model.StatusClosed)
		if err != nil {
			t.Fatalf("close %s: %v", typ, err)
		}
		if closed.Status != model.StatusClosed || closed.Type != typ {
			t.Errorf("%s lifecycle mismatch: %+v", typ, closed)
		}
	}
}
