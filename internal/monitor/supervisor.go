package monitor

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/Hara602/usnSentry/internal/exclusion"
	"github.com/Hara602/usnSentry/internal/metrics"
	"github.com/Hara602/usnSentry/internal/model"
	"github.com/Hara602/usnSentry/internal/sink"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Config 所有 worker 共用的依赖；只有 Sink 是共享的可变状态
type Config struct {
	Opener  Opener
	Sink    sink.Sink
	Filter  *exclusion.Filter
	Clock   clockwork.Clock
	Log     *zap.Logger
	Options Options
}

type supervisor struct {
	cfg Config

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
}

func newSupervisor(cfg Config) *supervisor {
	if cfg.Opener == nil {
		cfg.Opener = OpenSession
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &supervisor{cfg: cfg, done: make(chan struct{})}
}

func (s *supervisor) Start(ctx context.Context, vols []model.Volume) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		for _, v := range vols {
			s.wg.Add(1)
			go s.runWorker(ctx, v)
		}
		go func() {
			s.wg.Wait()
			close(s.done)
		}()
	})
}

func (s *supervisor) Stop() {
	s.stopOnce.Do(func() {
		// 从未启动时直接关闭 done
		s.startOnce.Do(func() { close(s.done) })
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
	})
}

func (s *supervisor) Done() <-chan struct{} {
	return s.done
}

// runWorker 句柄在这里打开、使用、关闭，不离开这个 goroutine。
// panic 在这里被拦截，不影响其它卷。
func (s *supervisor) runWorker(ctx context.Context, vol model.Volume) {
	defer s.wg.Done()

	// 绝大部分时间阻塞在内核等待里，独占一个 OS 线程
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log := s.cfg.Log.With(zap.String("volume", vol.Name()))
	defer func() {
		if r := recover(); r != nil {
			log.Error("💥 Volume worker panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	sess, err := s.cfg.Opener(vol)
	if err != nil {
		log.Warn("✗ Failed to open volume, skipping", zap.String("device", vol.DevicePath), zap.Error(err))
		return
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Debug("close volume handle", zap.Error(err))
		}
	}()
	log.Info("✓ Opened NTFS volume", zap.String("device", vol.DevicePath))

	metrics.WorkerStarted()
	defer metrics.WorkerStopped()

	t := NewTailer(TailerConfig{
		Volume:  vol.Name(),
		Session: sess,
		Sink:    s.cfg.Sink,
		Filter:  s.cfg.Filter,
		Clock:   s.cfg.Clock,
		Log:     log,
		Options: s.cfg.Options,
	})
	err = t.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Info("Monitoring stopped")
	default:
		log.Error("Monitoring failed", zap.Error(err))
	}
}
