// Package catalog 提供计数器目录（counter catalog）抽象：注册代理每一轮从目录读取一次快照，
// 目录本身可以在读取期间被其它 goroutine 并发修改。
package catalog

import (
	"sort"
	"sync"
	"time"
)

// Counter 计数器描述（名称、类型、维度、起止时间，时间为毫秒时间戳）
type Counter struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Dimensions []string `json:"dimensions"`
	StartTime  int64    `json:"start_time"`
	EndTime    int64    `json:"end_time"`
}

// Clone 深拷贝，快照与目录之间不共享维度切片
func (c Counter) Clone() Counter {
	out := c
	if c.Dimensions != nil {
		out.Dimensions = append([]string(nil), c.Dimensions...)
	}
	return out
}

// Catalog 计数器目录接口，Counters 必须支持并发调用并返回独立副本
type Catalog interface {
	Counters() []Counter
}

// Millis 转换为毫秒时间戳
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// Store 内存计数器目录（并发安全）
type Store struct {
	mu       sync.RWMutex
	counters map[string]Counter
}

// NewStore 创建内存目录
func NewStore(counters ...Counter) *Store {
	s := &Store{counters: make(map[string]Counter, len(counters))}
	for _, c := range counters {
		s.counters[c.Name] = c.Clone()
	}
	return s
}

// Add 新增或替换同名计数器
func (s *Store) Add(c Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[c.Name] = c.Clone()
}

// Remove 删除计数器，返回是否存在
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.counters[name]; !ok {
		return false
	}
	delete(s.counters, name)
	return true
}

// Len 当前计数器数量
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counters)
}

// Counters 返回按名称排序的快照
func (s *Store) Counters() []Counter {
	s.mu.RLock()
	out := make([]Counter, 0, len(s.counters))
	for _, c := range s.counters {
		out = append(out, c.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
