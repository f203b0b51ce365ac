package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Hara602/usnSentry/internal/exclusion"
	"github.com/Hara602/usnSentry/internal/metrics"
	"github.com/Hara602/usnSentry/internal/model"
	"github.com/Hara602/usnSentry/internal/sink"
	"github.com/Hara602/usnSentry/internal/usn"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// State 单个卷的读取状态
type State int32

const (
	StateAcquiring State = iota
	StateWaiting
	StateDecoding
	StateRequerying
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateAcquiring:
		return "ACQUIRING"
	case StateWaiting:
		return "WAITING"
	case StateDecoding:
		return "DECODING"
	case StateRequerying:
		return "REQUERYING"
	case StateBackoff:
		return "BACKOFF"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Options 读取循环的可调参数
type Options struct {
	BufferSize       int
	RequeryBackoff   time.Duration // 日志失效后重新查询失败的等待
	TransientBackoff time.Duration // 其它读取错误的等待
}

func DefaultOptions() Options {
	return Options{
		BufferSize:       64 * 1024,
		RequeryBackoff:   time.Second,
		TransientBackoff: 500 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BufferSize <= 0 {
		o.BufferSize = d.BufferSize
	}
	if o.RequeryBackoff <= 0 {
		o.RequeryBackoff = d.RequeryBackoff
	}
	if o.TransientBackoff <= 0 {
		o.TransientBackoff = d.TransientBackoff
	}
	return o
}

type TailerConfig struct {
	Volume  string
	Session Session
	Sink    sink.Sink
	Filter  *exclusion.Filter // nil = 不过滤
	Clock   clockwork.Clock
	Log     *zap.Logger
	Options Options
}

// Tailer 独占一个卷的 Session、JournalState 和 ReadCursor
type Tailer struct {
	volume  string
	session Session
	sink    sink.Sink
	filter  *exclusion.Filter
	clock   clockwork.Clock
	log     *zap.Logger
	opts    Options

	state   atomic.Int32
	journal model.JournalState
	cursor  model.ReadCursor
}

func NewTailer(cfg TailerConfig) *Tailer {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	return &Tailer{
		volume:  cfg.Volume,
		session: cfg.Session,
		sink:    cfg.Sink,
		filter:  cfg.Filter,
		clock:   cfg.Clock,
		log:     cfg.Log,
		opts:    cfg.Options.withDefaults(),
	}
}

// State 当前状态，可在其它 goroutine 读取
func (t *Tailer) State() State {
	return State(t.state.Load())
}

func (t *Tailer) setState(s State) {
	if old := State(t.state.Swap(int32(s))); old != s {
		t.log.Debug("state", zap.Stringer("from", old), zap.Stringer("to", s))
	}
}

// Run 初始查询失败时返回错误 (只终止这个卷)；
// 之后一直运行，直到 ctx 取消才返回 ctx.Err()。
func (t *Tailer) Run(ctx context.Context) error {
	t.setState(StateAcquiring)
	t.log.Info("Querying USN journal...")
	js, err := t.session.Query(ctx)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}
	t.acquire(js)
	t.log.Info("⏳ Waiting for real-time changes...")

	buf := make([]byte, t.opts.BufferSize)
	for {
		t.setState(StateWaiting)
		n, err := t.session.Read(ctx, t.cursor, buf)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if err := t.handleReadError(ctx, err); err != nil {
				return err
			}
			continue
		}

		t.setState(StateDecoding)
		t.decode(buf[:n])
	}
}

// acquire 重建 JournalState 和 ReadCursor
func (t *Tailer) acquire(js model.JournalState) {
	t.journal = js
	t.cursor = model.NewReadCursor(js)
	t.log.Info("Journal acquired",
		zap.Uint64("journal_id", js.JournalID),
		zap.Int64("next_usn", js.NextUSN),
		zap.Int64("first_usn", js.FirstUSN),
		zap.Int64("lowest_valid_usn", js.LowestValidUSN),
		zap.Uint64("max_size", js.MaximumSize),
	)
}

func (t *Tailer) handleReadError(ctx context.Context, err error) error {
	if errors.Is(err, ErrJournalInvalidated) {
		t.log.Warn("🔄 Journal wrapped or deleted, re-querying...", zap.Error(err))
		metrics.RecordRequery(t.volume)
		return t.requery(ctx)
	}

	metrics.RecordReadError(t.volume)
	t.log.Warn("Journal read failed, retrying",
		zap.Error(err),
		zap.Duration("backoff", t.opts.TransientBackoff),
	)
	t.setState(StateBackoff)
	return t.sleep(ctx, t.opts.TransientBackoff)
}

// requery 没有重试上限，只有 ctx 取消才会返回错误
func (t *Tailer) requery(ctx context.Context) error {
	for {
		t.setState(StateRequerying)
		js, err := t.session.Query(ctx)
		if err == nil {
			t.acquire(js)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.log.Warn("Re-query failed",
			zap.Error(err),
			zap.Duration("backoff", t.opts.RequeryBackoff),
		)
		t.setState(StateBackoff)
		if err := t.sleep(ctx, t.opts.RequeryBackoff); err != nil {
			return err
		}
	}
}

func (t *Tailer) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.clock.After(d):
		return nil
	}
}

func (t *Tailer) decode(buf []byte) {
	batch, err := usn.Decode(buf)
	if err != nil {
		// 不足 8 字节，游标不变
		t.log.Debug("short read", zap.Int("bytes", len(buf)))
		return
	}

	for rec := range batch.Records() {
		t.emit(rec)
	}
	if reason := batch.Aborted(); reason != usn.AbortNone {
		metrics.RecordParseAbort(t.volume, reason)
		t.log.Debug("decode stopped early", zap.String("reason", reason), zap.Int("bytes", len(buf)))
	}

	// 即使没有解出任何记录也要前进到内核给出的位置
	t.journal.NextUSN = batch.NextUSN
	t.cursor.StartUSN = batch.NextUSN
}

func (t *Tailer) emit(rec model.ChangeRecord) {
	rec.Volume = t.volume
	rec.ObservedAt = t.clock.Now()

	if excluded, why := t.filter.Excluded(rec.FileName); excluded {
		metrics.RecordExcluded(t.volume)
		t.log.Debug("excluded", zap.String("file", rec.FileName), zap.String("reason", why))
		return
	}
	if err := t.sink.Emit(rec); err != nil {
		t.log.Error("Failed to emit event", zap.Error(err), zap.Int64("usn", rec.USN))
		return
	}
	metrics.RecordEvent(t.volume, string(rec.Operation))
	t.log.Debug("📂 File Activity",
		zap.String("op", string(rec.Operation)),
		zap.String("file", rec.FileName),
		zap.Stringer("reason", rec.Reason),
	)
}
