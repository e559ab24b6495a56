// 包 sequence：每个视图会话的搜索代号（generation）发号器
// 背景：同一会话内的搜索可能重叠完成，只有最近一次发出的搜索结果可以被应用
package sequence

import (
	"context"
	"sync"
)

// Sequencer：按会话单调递增发号
// 约束：Next 返回值严格大于此前同一会话返回过的任何值；Latest 为最近一次 Next 的返回值，未发号时为 0
type Sequencer interface {
	Next(ctx context.Context, session string) (uint64, error)
	Latest(ctx context.Context, session string) (uint64, error)
	Forget(ctx context.Context, session string) error
}

// Memory：进程内实现，单实例部署使用
type Memory struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func NewMemory() *Memory { return &Memory{gen: make(map[string]uint64)} }

func (m *Memory) Next(_ context.Context, session string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen[session]++
	return m.gen[session], nil
}

func (m *Memory) Latest(_ context.Context, session string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen[session], nil
}

func (m *Memory) Forget(_ context.Context, session string) error {
	m.mu.Lock()
	delete(m.gen, session)
	m.mu.Unlock()
	return nil
}
