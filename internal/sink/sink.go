// Package sink writes decoded change records to the event stream.
package sink

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/Hara602/usnSentry/internal/model"
)

// Sink 接收 ChangeRecord。多个卷的 worker 会并发调用 Emit。
type Sink interface {
	Emit(rec model.ChangeRecord) error
}

const timeLayout = "15:04:05.000"

// LineSink 每条记录一行，整行在锁内一次 Write，保证不交错
type LineSink struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) Emit(rec model.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = AppendLine(s.buf[:0], rec)
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// AppendLine 格式:
// [15:04:05.000] C: CREATE | notes.txt | Document | .txt | USN=1234 | FileRef=000100000000A1B2
func AppendLine(b []byte, rec model.ChangeRecord) []byte {
	b = append(b, '[')
	b = rec.ObservedAt.AppendFormat(b, timeLayout)
	b = append(b, "] "...)
	if rec.Volume != "" {
		b = append(b, rec.Volume...)
		b = append(b, ' ')
	}
	b = append(b, rec.Operation...)
	b = append(b, " | "...)
	b = append(b, rec.FileName...)
	b = append(b, " | "...)
	b = append(b, rec.FileType...)
	b = append(b, " | "...)
	b = append(b, rec.Extension...)
	b = append(b, " | USN="...)
	b = strconv.AppendInt(b, rec.USN, 10)
	b = fmt.Appendf(b, " | FileRef=%016X\n", rec.FileRef)
	return b
}

// FormatLine 便于日志和测试使用，不含结尾换行
func FormatLine(rec model.ChangeRecord) string {
	b := AppendLine(nil, rec)
	return string(b[:len(b)-1])
}
