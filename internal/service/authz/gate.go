// Package authz 是唯一的属主鉴权入口。
// 所有受限变更路径都必须经过这里，不允许各处自行推导 isOwner。
package authz

import (
	"projectpulse/internal/apperr"
	"projectpulse/internal/model"
)

// Gate 无状态、无副作用。每次变更前由调用方重新读取 Project 后再判定，
// 绝不跨请求缓存判定结果（owner 变化只能通过替换 Project 记录发生）。
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// CanMutate 判定用户是否可以对项目执行受限变更（owner-only）。
func (g *Gate) CanMutate(userID int, project *model.Project) bool {
	if project == nil {
		return false
	}
	return userID == project.OwnerID
}

// Require 在无权时返回 Unauthorized，供变更路径直接串联。
func (g *Gate) Require(userID int, project *model.Project) error {
	if !g.CanMutate(userID, project) {
		return apperr.Unauthorized("only the project owner may perform this action")
	}
	return nil
}
