//go:build windows

package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/Hara602/usnSentry/internal/usn"
	"golang.org/x/sys/windows"
)

// winioctl.h
const (
	fsctlQueryUSNJournal = 0x000900f4
	fsctlReadUSNJournal  = 0x000900bb
)

type winSession struct {
	handle windows.Handle
	device string
}

func openSession(vol model.Volume) (Session, error) {
	path, err := windows.UTF16PtrFromString(vol.DevicePath)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		path,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", vol.DevicePath, err)
	}
	return &winSession{handle: h, device: vol.DevicePath}, nil
}

func (s *winSession) Query(ctx context.Context) (model.JournalState, error) {
	out := make([]byte, model.JournalDataV0Size)
	n, err := s.ioctl(ctx, fsctlQueryUSNJournal, nil, out)
	if err != nil {
		return model.JournalState{}, fmt.Errorf("FSCTL_QUERY_USN_JOURNAL %s: %w", s.device, err)
	}
	return usn.DecodeJournalData(out[:n])
}

func (s *winSession) Read(ctx context.Context, c model.ReadCursor, buf []byte) (int, error) {
	n, err := s.ioctl(ctx, fsctlReadUSNJournal, usn.EncodeReadRequest(c), buf)
	if err != nil {
		if errors.Is(err, windows.ERROR_HANDLE_EOF) {
			return 0, fmt.Errorf("%w: %w", ErrJournalInvalidated, err)
		}
		return 0, fmt.Errorf("FSCTL_READ_USN_JOURNAL %s: %w", s.device, err)
	}
	return int(n), nil
}

func (s *winSession) Close() error {
	return windows.CloseHandle(s.handle)
}

// ioctl 句柄是 overlapped 打开的，所有请求都带 OVERLAPPED，
// 等待期间 ctx 取消时用 CancelIoEx 打断这次请求。
func (s *winSession) ioctl(ctx context.Context, code uint32, in, out []byte) (uint32, error) {
	ev, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	defer windows.CloseHandle(ev)

	ov := &windows.Overlapped{HEvent: ev}
	var inPtr, outPtr *byte
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}

	var n uint32
	err = windows.DeviceIoControl(s.handle, code, inPtr, uint32(len(in)), outPtr, uint32(len(out)), &n, ov)
	if err != nil && !errors.Is(err, windows.ERROR_IO_PENDING) {
		return 0, err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = windows.CancelIoEx(s.handle, ov)
	})
	defer stop()

	if err := windows.GetOverlappedResult(s.handle, ov, &n, true); err != nil {
		if errors.Is(err, windows.ERROR_OPERATION_ABORTED) && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	return n, nil
}
