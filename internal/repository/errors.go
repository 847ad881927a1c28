package repository

import "errors"

var (
	// ErrNotFound 查找目标不存在
	ErrNotFound = errors.New("record not found")
	// ErrConflict 唯一键竞争，调用方整体回滚后可重试
	ErrConflict = errors.New("conflicting write")
)
