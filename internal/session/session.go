// 包 session：视图会话容器
package session

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"bizmap/internal/engine"
	"bizmap/internal/logger"
	"bizmap/internal/metrics"

	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("unknown session")

// 文档注释：会话 LRU（会话 ID 为键）
// 背景：每个浏览器标签页持有一个视图会话；长时间无访问或超出容量的会话被淘汰。
// 约束：访问即续期（滑动 TTL）；淘汰时释放发号器状态，释放在锁外进行。
type Manager struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry struct {
	id  string
	v   *engine.View
	exp time.Time
}

func NewManager(capacity int, ttl time.Duration) *Manager {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Manager{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

// Create：分配新的会话 ID 并登记 build 构造的视图
func (m *Manager) Create(build func(id string) *engine.View) *engine.View {
	id := uuid.NewString()
	v := build(id)
	m.mu.Lock()
	e := m.lst.PushFront(entry{id: id, v: v, exp: m.now().Add(m.ttl)})
	m.dict[id] = e
	var evicted []*engine.View
	for m.lst.Len() > m.cap {
		back := m.lst.Back()
		it := back.Value.(entry)
		delete(m.dict, it.id)
		m.lst.Remove(back)
		evicted = append(evicted, it.v)
	}
	n := m.lst.Len()
	m.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	logger.L().Debug("session_created", "session", id, "active", n)
	m.release(evicted, "capacity")
	return v
}

// Get：命中且未过期时续期并返回
func (m *Manager) Get(id string) (*engine.View, error) {
	if id == "" {
		return nil, ErrUnknownSession
	}
	m.mu.Lock()
	e, ok := m.dict[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrUnknownSession
	}
	it := e.Value.(entry)
	if !m.now().Before(it.exp) {
		m.lst.Remove(e)
		delete(m.dict, id)
		n := m.lst.Len()
		m.mu.Unlock()
		metrics.SessionsActive.Set(float64(n))
		m.release([]*engine.View{it.v}, "ttl")
		return nil, ErrUnknownSession
	}
	it.exp = m.now().Add(m.ttl)
	e.Value = it
	m.lst.MoveToFront(e)
	m.mu.Unlock()
	return it.v, nil
}

// Sweep：清理全部过期会话，返回清理数量
func (m *Manager) Sweep() int {
	now := m.now()
	var evicted []*engine.View
	m.mu.Lock()
	for e := m.lst.Back(); e != nil; {
		prev := e.Prev()
		it := e.Value.(entry)
		if !now.Before(it.exp) {
			m.lst.Remove(e)
			delete(m.dict, it.id)
			evicted = append(evicted, it.v)
		}
		e = prev
	}
	n := m.lst.Len()
	m.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	m.release(evicted, "ttl")
	return len(evicted)
}

// Run：按 interval 周期清理，直到 ctx 结束
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				logger.L().Info("session_sweep", "evicted", n)
			}
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lst.Len()
}

func (m *Manager) release(views []*engine.View, reason string) {
	for _, v := range views {
		if err := v.Close(context.Background()); err != nil {
			logger.L().Warn("session_release_failed", "session", v.ID(), "err", err)
		}
		logger.L().Debug("session_evicted", "session", v.ID(), "reason", reason)
	}
}
