package risk

import (
	"strconv"
	"time"
)

// Clock 抽象时间便于测试。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NowUTC 默认使用 UTC 时间。
var NowUTC Clock = realClock{}

// Timestamp 输出秒级 unix 时间戳字符串，与持久化文件格式一致。
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
