// Package errors 定义学生档案服务的错误分类。
//
//   - ValidationError：输入格式错误，在任何存储操作之前拒绝，可由用户修正
//   - NotFoundError：按内部 ID 更新/查询时记录不存在
//   - StoreError：关系库约束冲突或连接失败
//   - SyncError：与外部表格交互失败，只在同步引擎内部产生，永远不向上中断业务操作
package errors

import (
	"errors"
	"fmt"
)

// ValidationError 字段校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建字段校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError 记录不存在
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在: %s", e.Entity, e.Key)
}

// StoreError 存储层失败（约束冲突、连接失败等）
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore 将仓储层错误包装为 StoreError；nil 原样返回
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// SyncDirection 同步方向
type SyncDirection string

const (
	SyncPush SyncDirection = "push"
	SyncPull SyncDirection = "pull"
)

// SyncError 与外部表格同步失败
// Stage 标记失败发生的阶段：connect / load / clear / write / read / panic
type SyncError struct {
	Direction SyncDirection
	Stage     string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("表格同步(%s)在 %s 阶段失败: %v", e.Direction, e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsStore 判断是否为存储层错误
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
