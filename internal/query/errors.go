package query

import "fmt"

// Mode：查询方式，用于错误归类与指标标签
type Mode string

const (
	ModeAll         Mode = "all"
	ModeProximity   Mode = "proximity"
	ModeNearest     Mode = "nearest"
	ModeContainment Mode = "containment"
	ModeName        Mode = "name"
)

// QueryFailed：传输失败、非 2xx 响应或响应体无法解析
// 约束：失败时不返回任何部分结果
type QueryFailed struct {
	Mode   Mode
	Status int // 0 表示未拿到响应
	Cause  error
}

func (e *QueryFailed) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("query %s failed: status %d: %v", e.Mode, e.Status, e.Cause)
	}
	return fmt.Sprintf("query %s failed: %v", e.Mode, e.Cause)
}

func (e *QueryFailed) Unwrap() error { return e.Cause }
