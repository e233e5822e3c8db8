package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Config Worker Pool 配置
type Config struct {
	Workers int `mapstructure:"workers"` // 并发 worker 数量
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{Workers: 8}
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Pool 基于 ants 的有界 worker pool
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New 创建 Worker Pool
func New(cfg *Config, logger *zap.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be > 0, got %d", cfg.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{logger: logger}
	antsPool, err := ants.NewPool(cfg.Workers,
		ants.WithPanicHandler(func(r interface{}) {
			p.failed.Add(1)
			logger.Error("worker panic", zap.Any("error", r))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}
	p.pool = antsPool
	return p, nil
}

// Submit 提交任务，池满时阻塞
func (p *Pool) Submit(task func()) error {
	p.submitted.Add(1)
	err := p.pool.Submit(func() {
		task()
		p.completed.Add(1)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	return err
}

// Group runs error-returning tasks on the pool and waits for them.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup
	once sync.Once
	err  error
}

// NewGroup 创建任务组
func (p *Pool) NewGroup() *Group {
	return &Group{pool: p}
}

// Go schedules fn; only the first error is kept.
func (g *Group) Go(fn func() error) {
	g.wg.Add(1)
	g.pool.submitted.Add(1)
	err := g.pool.pool.Submit(func() {
		defer g.wg.Done()
		if err := fn(); err != nil {
			g.pool.failed.Add(1)
			g.once.Do(func() { g.err = err })
		}
		g.pool.completed.Add(1)
	})
	if err != nil {
		g.wg.Done()
		if errors.Is(err, ants.ErrPoolClosed) {
			err = ErrPoolClosed
		}
		g.once.Do(func() { g.err = err })
	}
}

// Wait blocks until every scheduled task has finished.
func (g *Group) Wait() error {
	g.wg.Wait()
	return g.err
}

// Stats 获取统计信息
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Running 获取运行中的 worker 数量
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Shutdown 关闭
func (p *Pool) Shutdown() {
	p.pool.Release()
}
