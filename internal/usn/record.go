// Package usn decodes the binary output of FSCTL_READ_USN_JOURNAL into
// change records. Every header-declared offset and length is checked
// against the number of bytes the kernel actually returned.
package usn

import (
	"errors"
	"iter"
	"time"
	"unicode/utf8"

	"github.com/Hara602/usnSentry/internal/analysis"
	"github.com/Hara602/usnSentry/internal/model"
	"golang.org/x/text/encoding/unicode"
)

// ErrShortBuffer 缓冲区不足 8 字节，连 next USN 都没有
var ErrShortBuffer = errors.New("usn: buffer shorter than next-usn prefix")

const nextUSNSize = 8

// Abort reasons reported by Batch.Aborted.
const (
	AbortNone        = ""
	AbortShortHeader = "short header"
	AbortZeroLength  = "zero record length"
	AbortRecordBound = "record exceeds buffer"
	AbortNameBound   = "file name exceeds record"
)

// Batch 一次读取返回的数据。NextUSN 总是取前 8 字节，与后续记录能否解析无关。
type Batch struct {
	NextUSN int64
	body    cursor
	aborted string
}

// Decode 解析缓冲区前缀；记录本身在 Records 迭代时才按需解码
func Decode(buf []byte) (*Batch, error) {
	c := cursor{buf: buf}
	next, err := c.i64(0)
	if err != nil {
		return nil, ErrShortBuffer
	}
	body, _ := c.window(nextUSNSize, c.len()-nextUSNSize)
	return &Batch{NextUSN: next, body: body}, nil
}

// Aborted 最近一次完整迭代是否因损坏保护而提前结束，返回原因；正常结束返回 AbortNone
func (b *Batch) Aborted() string {
	return b.aborted
}

// Records 按顺序惰性产出记录。遇到不完整或声明越界的记录时停止，不返回错误。
func (b *Batch) Records() iter.Seq[model.ChangeRecord] {
	return func(yield func(model.ChangeRecord) bool) {
		b.aborted = AbortNone
		off := 0
		for off < b.body.len() {
			if b.body.len()-off < model.RecordV2HeaderSize {
				b.aborted = AbortShortHeader
				return
			}
			recLen, _ := b.body.u32(off)
			if recLen == 0 {
				b.aborted = AbortZeroLength
				return
			}
			rec, err := b.body.window(off, int(recLen))
			if err != nil || int(recLen) < model.RecordV2HeaderSize {
				b.aborted = AbortRecordBound
				return
			}
			off += int(recLen)

			major, _ := rec.u16(4)
			if major != model.RecordMajorV2 {
				// V3/V4 使用 128 位文件引用，这里只读 V2
				continue
			}
			r, err := parseV2(rec)
			if err != nil {
				b.aborted = AbortNameBound
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}

// parseV2 rec 已保证至少包含完整的固定头部
func parseV2(rec cursor) (model.ChangeRecord, error) {
	fileRef, _ := rec.u64(8)
	parentRef, _ := rec.u64(16)
	usnVal, _ := rec.i64(24)
	stamp, _ := rec.i64(32)
	reason, _ := rec.u32(40)
	attrs, _ := rec.u32(52)
	nameLen, _ := rec.u16(56)
	nameOff, _ := rec.u16(58)

	raw, err := rec.bytes(int(nameOff), int(nameLen))
	if err != nil {
		return model.ChangeRecord{}, err
	}
	name := decodeName(raw)
	ext, ftype := analysis.Classify(name)

	return model.ChangeRecord{
		FileName:      name,
		USN:           usnVal,
		FileRef:       fileRef,
		ParentFileRef: parentRef,
		Reason:        model.Reason(reason),
		Attributes:    attrs,
		JournalTime:   filetimeToTime(stamp),
		Operation:     OperationOf(model.Reason(reason)),
		FileType:      ftype,
		Extension:     ext,
	}, nil
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeName UTF-16LE 解码，非法序列替换为 U+FFFD
func decodeName(raw []byte) string {
	odd := len(raw)%2 != 0
	if odd {
		raw = raw[:len(raw)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return string(utf8.RuneError)
	}
	if odd {
		out = utf8.AppendRune(out, utf8.RuneError)
	}
	return string(out)
}

// 1601-01-01 到 1970-01-01 之间的 100ns 间隔数
const filetimeEpochDelta = 116444736000000000

func filetimeToTime(ft int64) time.Time {
	if ft <= 0 {
		return time.Time{}
	}
	return time.Unix(0, (ft-filetimeEpochDelta)*100).UTC()
}
