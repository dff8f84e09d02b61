// Package health 把任务和支出流折叠成项目健康指标。
// 纯计算、无 I/O、无内部状态；每次任务或支出集合变化后重新计算。
package health

import (
	"math"

	"projectpulse/internal/model"
)

// TaskCounts 按状态分桶的任务数，四项之和恒等于任务总数。
type TaskCounts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Review     int `json:"review"`
	Completed  int `json:"completed"`
}

func (c TaskCounts) Total() int {
	return c.Todo + c.InProgress + c.Review + c.Completed
}

type Report struct {
	TotalTasks        int         `json:"total_tasks"`
	TaskCounts        TaskCounts  `json:"task_counts"`
	CompletionPercent int         `json:"completion_percent"`
	Budget            model.Cents `json:"budget"`
	ActualCost        model.Cents `json:"actual_cost"`
	Remaining         model.Cents `json:"remaining"`
	OverBudget        bool        `json:"over_budget"`
}

// ComputeHealth derives completion and budget metrics for one project.
// 金额全程用整数分累加，只在展示时格式化，避免浮点累计误差。
func ComputeHealth(tasks []model.Task, expenditures []model.Expenditure, budget model.Cents) Report {
	var counts TaskCounts
	for _, t := range tasks {
		switch t.Status {
		case model.TaskTodo:
			counts.Todo++
		case model.TaskInProgress:
			counts.InProgress++
		case model.TaskReview:
			counts.Review++
		case model.TaskCompleted:
			counts.Completed++
		}
	}

	completion := 0
	if len(tasks) > 0 {
		completion = int(math.Round(100 * float64(counts.Completed) / float64(len(tasks))))
	}

	var actual model.Cents
	for _, e := range expenditures {
		actual += e.Amount
	}

	return Report{
		TotalTasks:        len(tasks),
		TaskCounts:        counts,
		CompletionPercent: completion,
		Budget:            budget,
		ActualCost:        actual,
		Remaining:         budget - actual,
		// 严格大于：花费恰好等于预算仍算 within budget
		OverBudget: actual > budget,
	}
}

// BreakdownEntry 按描述聚合的支出分桶，供前端画支出饼图。
type BreakdownEntry struct {
	Description string      `json:"description"`
	Amount      model.Cents `json:"amount"`
}

// Breakdown groups expenditure amounts by description, preserving
// first-seen order.
func Breakdown(expenditures []model.Expenditure) []BreakdownEntry {
	index := map[string]int{}
	entries := []BreakdownEntry{}
	for _, e := range expenditures {
		if i, ok := index[e.Description]; ok {
			entries[i].Amount += e.Amount
			continue
		}
		index[e.Description] = len(entries)
		entries = append(entries, BreakdownEntry{Description: e.Description, Amount: e.Amount})
	}
	return entries
}
