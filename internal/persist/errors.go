package persist

import "errors"

// ErrNotFound 尚无持久化的风险状态。
var ErrNotFound = errors.New("risk state not found")
