package monitor

import (
	"context"

	"github.com/Hara602/usnSentry/internal/model"
)

type FileMonitor interface {
	Start(ctx context.Context, vols []model.Volume) // 每个卷一个独立 worker
	Stop()                                          // 取消所有 worker 并等待退出
	Done() <-chan struct{}                          // 所有 worker 退出后关闭
}

func New(cfg Config) FileMonitor {
	return newSupervisor(cfg)
}
