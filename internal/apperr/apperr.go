// Package apperr 定义核心错误分类：
// Unauthorized / Validation / NotFound / Conflict / Transient。
// Unauthorized 和 Validation 对单次调用是终态，永不自动重试；
// Transient 读失败可以被下一个轮询周期吸收。
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// 操作者不是项目 owner，无权执行受限变更
	KindUnauthorized
	// 请求体非法：空标题、枚举值越界、负金额
	KindValidation
	// 引用的 id 在存储中不存在
	KindNotFound
	// 乐观并发冲突：version 不匹配，写入被拒绝
	KindConflict
	// 网络/存储瞬时故障，可由下一轮重试
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is 可以按 Kind 匹配哨兵错误
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

// KindOf 返回错误的分类，未分类错误返回 KindUnknown。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable 只有瞬时错误可以重试；变更操作的失败一律直接上报。
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
