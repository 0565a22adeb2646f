package session

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"

	"staybook/internal/domain"
)

const defaultMaxSessions = 100000

// MemoryStore keeps sessions in a ccache with one TTL per item. ccache
// evicts least recently used entries past MaxSize; Prune drops the expired
// ones that have not been touched since.
type MemoryStore struct {
	cache *ccache.Cache[*domain.Session]
	now   func() time.Time
}

func NewMemoryStore(maxSize int64) *MemoryStore {
	if maxSize <= 0 {
		maxSize = defaultMaxSessions
	}
	return &MemoryStore{
		cache: ccache.New(ccache.Configure[*domain.Session]().MaxSize(maxSize)),
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, nil
	}
	sess := item.Value()
	if sess.Expired(s.now()) {
		s.cache.Delete(id)
		return nil, nil
	}
	c := *sess
	return &c, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *domain.Session) error {
	c := *sess
	s.cache.Set(sess.ID, &c, sess.ExpiresAt.Sub(s.now()))
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *MemoryStore) Prune(ctx context.Context) (int, error) {
	now := s.now()
	return s.cache.DeleteFunc(func(key string, item *ccache.Item[*domain.Session]) bool {
		return item.Value().Expired(now)
	}), nil
}

func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

func (s *MemoryStore) Close() {
	s.cache.Stop()
}
