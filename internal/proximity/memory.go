package proximity

import (
	"container/list"
	"context"
	"sync"

	"hospital-api/internal/geo"
)

// 文档注释：进程内存储（先进先出，有容量上限）
// 背景：单实例部署或测试时使用；超过容量淘汰最早写入的条目。
type MemoryStore struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
}

// NewMemoryStore capacity<=0 时取 256
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 256
	}
	return &MemoryStore{cap: capacity, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Candidates(_ context.Context, _ geo.Point, _ float64) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, s.lst.Len())
	for e := s.lst.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Entry))
	}
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, en Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.dict[en.ID]; ok {
		s.lst.Remove(old)
	}
	s.dict[en.ID] = s.lst.PushBack(en)
	for s.lst.Len() > s.cap {
		front := s.lst.Front()
		delete(s.dict, front.Value.(Entry).ID)
		s.lst.Remove(front)
	}
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.dict[id]; ok {
		s.lst.Remove(e)
		delete(s.dict, id)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lst.Init()
	s.dict = make(map[string]*list.Element)
	return nil
}

// Len 当前条目数
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lst.Len()
}
