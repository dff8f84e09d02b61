package model

import "time"

type RiskIssueType string

const (
	TypeRisk  RiskIssueType = "risk"
	TypeIssue RiskIssueType = "issue"
)

func (t RiskIssueType) Valid() bool {
	return t == TypeRisk || t == TypeIssue
}

type RiskIssueStatus string

const (
	StatusOpen   RiskIssueStatus = "open"
	StatusClosed RiskIssueStatus = "closed"
)

func (s RiskIssueStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

func (l ImpactLevel) Valid() bool {
	return l == ImpactLow || l == ImpactMedium || l == ImpactHigh
}

// RiskIssue 风险与问题共用一张表和一套生命周期，仅靠 Type 区分展示。
// 创建后除 Status 外的字段不可变。
type RiskIssue struct {
	ID          int             `json:"id"`
	ProjectID   int             `json:"project_id"`
	Type        RiskIssueType   `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImpactLevel ImpactLevel     `json:"impact_level"`
	Status      RiskIssueStatus `json:"status"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
