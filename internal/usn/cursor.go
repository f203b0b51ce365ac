package usn

import (
	"encoding/binary"
	"errors"
)

var errOutOfBounds = errors.New("read out of bounds")

// cursor 在一段只读缓冲区上做带边界检查的小端读取。
// 所有偏移都相对于 buf 起始位置，越界时返回 errOutOfBounds 而不是 panic。
type cursor struct {
	buf []byte
}

func (c cursor) len() int { return len(c.buf) }

// window 返回 [off, off+n) 子区间
func (c cursor) window(off, n int) (cursor, error) {
	if off < 0 || n < 0 || off > len(c.buf) || n > len(c.buf)-off {
		return cursor{}, errOutOfBounds
	}
	return cursor{buf: c.buf[off : off+n]}, nil
}

func (c cursor) bytes(off, n int) ([]byte, error) {
	w, err := c.window(off, n)
	if err != nil {
		return nil, err
	}
	return w.buf, nil
}

func (c cursor) u16(off int) (uint16, error) {
	b, err := c.bytes(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c cursor) u32(off int) (uint32, error) {
	b, err := c.bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c cursor) u64(off int) (uint64, error) {
	b, err := c.bytes(off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c cursor) i64(off int) (int64, error) {
	v, err := c.u64(off)
	return int64(v), err
}
