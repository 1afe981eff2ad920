package lock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Local is an in-process try-lock keyed by name.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) TryLock(_ context.Context, key string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true, nil
}

// Advisory adds a Postgres session advisory lock on top of the local lock so
// that separate processes sharing the database do not run the same job.
type Advisory struct {
	pool   *pgxpool.Pool
	local  *Local
	logger *zap.Logger
}

func NewAdvisory(pool *pgxpool.Pool, logger *zap.Logger) *Advisory {
	return &Advisory{pool: pool, local: NewLocal(), logger: logger}
}

func (a *Advisory) TryLock(ctx context.Context, key string) (func(), bool, error) {
	releaseLocal, ok, err := a.local.TryLock(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}

	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		releaseLocal()
		return nil, false, err
	}

	id := keyID(key)
	var acquired bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", id).Scan(&acquired); err != nil {
		conn.Release()
		releaseLocal()
		return nil, false, err
	}
	if !acquired {
		conn.Release()
		releaseLocal()
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := conn.Exec(unlockCtx, "SELECT pg_advisory_unlock($1)", id); err != nil {
				a.logger.Warn("advisory unlock failed", zap.String("key", key), zap.Error(err))
			}
			conn.Release()
			releaseLocal()
		})
	}, true, nil
}

func keyID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
