package health

import (
	"testing"

	"projectpulse/internal/model"
)

func task(status model.TaskStatus) model.Task {
	return model.Task{Status: status, Priority: model.PriorityMedium}
}

func exp(amount string) model.Expenditure {
	c, err := model.ParseCents(amount)
	if err != nil {
		panic(err)
	}
	return model.Expenditure{Amount: c}
}

func TestComputeHealthEmptyTasks(t *testing.T) {
	report := ComputeHealth(nil, nil, 100000)

	if report.CompletionPercent != 0 {
		t.Errorf("empty task list should yield 0%%, got %d", report.CompletionPercent)
	}
	if report.TotalTasks != 0 || report.TaskCounts.Total() != 0 {
		t.Errorf("unexpected counts: %+v", report.TaskCounts)
	}
}

func TestComputeHealthCountsSumToTotal(t *testing.T) {
	tasks := []model.Task{
		task(model.TaskTodo),
		task(model.TaskTodo),
		task(model.TaskInProgress),
		task(model.TaskReview),
		task(model.TaskCompleted),
		task(model.TaskCompleted),
		task(model.TaskCompleted),
	}

	report := ComputeHealth(tasks, nil, 0)

	if report.TaskCounts.Total() != len(tasks) {
		t.Errorf("per-status counts sum to %d, want %d", report.TaskCounts.Total(), len(tasks))
	}
	if report.TaskCounts.Todo != 2 || report.TaskCounts.InProgress != 1 ||
		report.TaskCounts.Review != 1 || report.TaskCounts.Completed != 3 {
		t.Errorf("unexpected counts: %+v", report.TaskCounts)
	}
	if report.CompletionPercent < 0 || report.CompletionPercent > 100 {
		t.Errorf("completion percent out of range: %d", report.CompletionPercent)
	}
	// 3/7 = 42.857... -> 43
	if report.CompletionPercent != 43 {
		t.Errorf("completion percent = %d, want 43", report.CompletionPercent)
	}
}

func TestComputeHealthBudgetBoundary(t *testing.T) {
	budget, _ := model.ParseCents("100.00")

	exact := ComputeHealth(nil, []model.Expenditure{exp("60.00"), exp("40.00")}, budget)
	if exact.OverBudget {
		t.Error("actual == budget must be classified within budget")
	}
	if exact.Remaining != 0 {
		t.Errorf("remaining = %s, want 0.00", exact.Remaining)
	}

	over := ComputeHealth(nil, []model.Expenditure{exp("60.00"), exp("40.01")}, budget)
	if !over.OverBudget {
		t.Error("one cent over budget must be flagged")
	}
	if over.Remaining != -1 {
		t.Errorf("remaining = %s, want -0.01", over.Remaining)
	}
}

// 场景校验：预算 1000.00，支出 300.00 + 250.25，4 个任务 1 个完成。
func TestComputeHealthScenario(t *testing.T) {
	budget, _ := model.ParseCents("1000.00")
	tasks := []model.Task{
		task(model.TaskCompleted),
		task(model.TaskTodo),
		task(model.TaskInProgress),
		task(model.TaskReview),
	}
	expenditures := []model.Expenditure{exp("300.00"), exp("250.25")}

	report := ComputeHealth(tasks, expenditures, budget)

	if report.ActualCost.String() != "550.25" {
		t.Errorf("actual cost = %s, want 550.25", report.ActualCost)
	}
	if report.Remaining.String() != "449.75" {
		t.Errorf("remaining = %s, want 449.75", report.Remaining)
	}
	if report.OverBudget {
		t.Error("should be within budget")
	}
	if report.CompletionPercent != 25 {
		t.Errorf("completion percent = %d, want 25", report.CompletionPercent)
	}
}

// 大量小额累加不应产生舍入漂移（0.1 类浮点问题）。
func TestComputeHealthManySmallAmounts(t *testing.T) {
	expenditures := make([]model.Expenditure, 1000)
	for i := range expenditures {
		expenditures[i] = exp("0.10")
	}

	report := ComputeHealth(nil, expenditures, 0)
	if report.ActualCost.String() != "100.00" {
		t.Errorf("actual cost = %s, want 100.00", report.ActualCost)
	}
}

func TestBreakdownGroupsByDescription(t *testing.T) {
	expenditures := []model.Expenditure{
		{Description: "hardware", Amount: 1000},
		{Description: "travel", Amount: 500},
		{Description: "hardware", Amount: 250},
	}

	entries := Breakdown(expenditures)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Description != "hardware" || entries[0].Amount != 1250 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Description != "travel" || entries[1].Amount != 500 {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}
