package model

import "time"

// Expenditure 是追加型的支出记录：只能新增和删除，不允许原地修改金额。
type Expenditure struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Amount      Cents     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
