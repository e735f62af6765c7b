package repository

import "errors"

// ErrNotFound 目标记录不存在（删除/更新影响 0 行）
var ErrNotFound = errors.New("record not found")
