package monitor

import (
	"context"
	"errors"

	"github.com/Hara602/usnSentry/internal/model"
)

var (
	// ErrJournalInvalidated 日志回绕或被删除 (ERROR_HANDLE_EOF)，需要重新查询日志身份
	ErrJournalInvalidated = errors.New("usn journal invalidated")
	// ErrUnsupported 非 Windows 平台
	ErrUnsupported = errors.New("usn journal is only available on Windows")
)

// Session 一个已打开的卷句柄，只属于一个 worker
type Session interface {
	// Query FSCTL_QUERY_USN_JOURNAL
	Query(ctx context.Context) (model.JournalState, error)
	// Read FSCTL_READ_USN_JOURNAL，阻塞直到有新数据、出错或 ctx 取消
	Read(ctx context.Context, c model.ReadCursor, buf []byte) (int, error)
	Close() error
}

// Opener 打开卷。在 worker 自己的 goroutine 中调用，句柄不跨 worker 共享
type Opener func(vol model.Volume) (Session, error)

// OpenSession 以读写、共享读写、OPEN_EXISTING、overlapped 方式打开 `\\.\X:`
func OpenSession(vol model.Volume) (Session, error) {
	return openSession(vol)
}
