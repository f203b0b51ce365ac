package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/Hara602/usnSentry/internal/model"
)

type readResult struct {
	buf []byte
	err error
}

type queryResult struct {
	state model.JournalState
	err   error
}

// fakeSession 按顺序返回预置的查询和读取结果；读完后阻塞直到 ctx 取消
type fakeSession struct {
	mu      sync.Mutex
	queries []queryResult
	nQuery  int
	cursors []model.ReadCursor
	closed  bool

	reads      chan readResult
	panicQuery bool
}

func newFakeSession(queries ...queryResult) *fakeSession {
	return &fakeSession{
		queries: queries,
		reads:   make(chan readResult, 16),
	}
}

func (s *fakeSession) push(buf []byte, err error) {
	s.reads <- readResult{buf: buf, err: err}
}

func (s *fakeSession) Query(ctx context.Context) (model.JournalState, error) {
	if s.panicQuery {
		panic("driver exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nQuery++
	if len(s.queries) == 0 {
		return model.JournalState{}, errors.New("journal not active")
	}
	q := s.queries[0]
	s.queries = s.queries[1:]
	return q.state, q.err
}

func (s *fakeSession) Read(ctx context.Context, c model.ReadCursor, buf []byte) (int, error) {
	s.mu.Lock()
	s.cursors = append(s.cursors, c)
	s.mu.Unlock()

	select {
	case r := <-s.reads:
		if r.err != nil {
			return 0, r.err
		}
		return copy(buf, r.buf), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) readCursors() []model.ReadCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ReadCursor(nil), s.cursors...)
}

func (s *fakeSession) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nQuery
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type recordingSink struct {
	mu   sync.Mutex
	recs []model.ChangeRecord
}

func (s *recordingSink) Emit(rec model.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *recordingSink) records() []model.ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChangeRecord(nil), s.recs...)
}
