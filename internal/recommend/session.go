package recommend

import (
	"sync"
	"time"

	"hospital-api/internal/geo"
	"hospital-api/internal/poi"

	"github.com/google/uuid"
)

// 文档注释：客户端会话
// 背景：同一客户端可能先后发起定位与搜索，先发后至的响应不能覆盖较新的状态；每次请求领取单调递增的代际号。
// 约束：只接受与最新代际号相同的结果。
type Session struct {
	ID string

	mu      sync.Mutex
	gen     uint64
	current *Result
	touched time.Time
}

// Begin 领取新的代际号
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.touched = t
	s.mu.Unlock()
}

// Apply 代际号仍为最新时写入结果并返回 true
func (s *Session) Apply(gen uint64, r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.current = &r
	return true
}

// Current 最近一次生效的结果
func (s *Session) Current() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Result{}, false
	}
	return *s.current, true
}

// LastCenter 最近一次生效结果的中心
func (s *Session) LastCenter() (geo.Point, bool) {
	r, ok := s.Current()
	if !ok {
		return geo.Point{}, false
	}
	return r.Center, true
}

// Find 在当前列表中按 id 查找
func (s *Session) Find(id string) (poi.Hospital, bool) {
	r, ok := s.Current()
	if !ok {
		return poi.Hospital{}, false
	}
	for _, h := range r.Hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return poi.Hospital{}, false
}

// 文档注释：会话表
// 约束：Get 与 GetOrCreate 命中即刷新活跃时间；空闲超过 ttl 的会话在新建会话时顺带清理；会话号使用 UUID。
type Sessions struct {
	mu  sync.Mutex
	m   map[string]*Session
	ttl time.Duration
	now func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Sessions{m: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// Get 查找已有会话
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// GetOrCreate id 为空、非法或不存在时新建会话
func (s *Sessions) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[id]; ok {
		sess.touch(s.now())
		return sess
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	s.sweepLocked()
	sess := &Session{ID: id, touched: s.now()}
	s.m[id] = sess
	return sess
}

// Len 会话数量
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Sessions) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.m {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.m, id)
		}
	}
}
