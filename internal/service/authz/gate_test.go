package authz

import (
	"errors"
	"testing"

	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
)

func TestCanMutate(t *testing.T) {
	g := NewGate()
	project := &model.Project{ID: 1, OwnerID: 42}

	if !g.CanMutate(42, project) {
		t.Error("owner should be allowed to mutate")
	}
	if g.CanMutate(7, project) {
		t.Error("non-owner must not be allowed to mutate")
	}
	if g.CanMutate(42, nil) {
		t.Error("nil project must never be mutable")
	}
}

func TestRequireReturnsUnauthorized(t *testing.T) {
	g := NewGate()
	project := &model.Project{ID: 1, OwnerID: 42}

	if err := g.Require(42, project); err != nil {
		t.Fatalf("owner check failed: %v", err)
	}

	err := g.Require(7, project)
	if err == nil {
		t.Fatal("expected error for non-owner")
	}
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized kind, got %v", apperr.KindOf(err))
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatal("expected *apperr.Error")
	}
}

// 判定必须基于传入的 Project 快照，owner 变化立即生效。
func TestGateReEvaluatesPerCall(t *testing.T) {
	g := NewGate()
	project := &model.Project{ID: 1, OwnerID: 42}

	if !g.CanMutate(42, project) {
		t.Fatal("owner should be allowed")
	}

	project.OwnerID = 7
	if g.CanMutate(42, project) {
		t.Error("stale owner must lose mutation rights on the next check")
	}
	if !g.CanMutate(7, project) {
		t.Error("new owner must gain mutation rights on the next check")
	}
}
