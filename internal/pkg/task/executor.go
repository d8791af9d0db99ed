package task

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"bazaar/internal/pkg/logger"
)

// Executor 是后台任务的统一入口：通知、发票渲染这类 fire-and-forget 工作
// 都显式提交到这里，而不是随手 go 一个匿名协程。
// 并发度有上限，错误只记日志，永远不影响提交方。
type Executor struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewExecutor limit 为同时运行的后台任务上限。
func NewExecutor(limit int) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	return &Executor{group: g, ctx: gctx, cancel: cancel}
}

// Submit 提交一个后台任务。name 用于日志定位。
// 注意传入的 ctx 不继承调用方的请求 ctx：请求返回后任务还要继续跑。
func (e *Executor) Submit(name string, fn func(ctx context.Context) error) {
	e.group.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				logger.Ctx(e.ctx).Error().Str("task", name).Interface("panic", r).Msg("background task panicked")
			}
		}()
		if err := fn(e.ctx); err != nil {
			logger.Ctx(e.ctx).Error().Str("task", name).Err(err).Msg("background task failed")
		}
		return nil // 错误不向上传播，保持 fire-and-forget 语义
	})
}

// Shutdown 停止接收新任务并等待在途任务结束，进程退出前调用。
func (e *Executor) Shutdown() {
	e.once.Do(func() {
		_ = e.group.Wait()
		e.cancel()
	})
}
