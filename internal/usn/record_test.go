package usn

import (
	"encoding/binary"
	"slices"
	"testing"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/Hara602/usnSentry/internal/usn/usntest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, buf []byte) (*Batch, []model.ChangeRecord) {
	t.Helper()
	b, err := Decode(buf)
	require.NoError(t, err)
	return b, slices.Collect(b.Records())
}

func TestDecodeNextUSNIndependentOfRecords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		buf  []byte
	}{
		{"prefix only", usntest.Buffer(4096)},
		{"garbage body", append(usntest.Buffer(4096), 0xde, 0xad, 0xbe, 0xef)},
		{"valid record", usntest.Buffer(4096, usntest.Record{Name: "a.txt", USN: 10}.Encode())},
		{"zero length record", append(usntest.Buffer(4096), make([]byte, 64)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, _ := collect(t, tt.buf)
			assert.Equal(t, int64(4096), b.NextUSN)
			assert.Equal(t, int64(binary.LittleEndian.Uint64(tt.buf)), b.NextUSN)
		})
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 7} {
		_, err := Decode(make([]byte, n))
		assert.ErrorIs(t, err, ErrShortBuffer)
	}
}

func TestDecodeRecords(t *testing.T) {
	t.Parallel()

	buf := usntest.Buffer(300,
		usntest.Record{Name: "notes.txt", USN: 100, FileRef: 0x1000000000A1B2, ParentRef: 5, Reason: model.ReasonFileCreate}.Encode(),
		usntest.Record{Name: "video.mp4", USN: 200, FileRef: 7, Reason: model.ReasonDataOverwrite}.Encode(),
		usntest.Record{Name: "docs", USN: 250, FileRef: 8, Reason: model.ReasonRenameNewName, Attributes: model.FileAttributeDirectory}.Encode(),
	)
	b, recs := collect(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, AbortNone, b.Aborted())
	assert.Equal(t, int64(300), b.NextUSN)

	assert.Equal(t, "notes.txt", recs[0].FileName)
	assert.Equal(t, int64(100), recs[0].USN)
	assert.Equal(t, uint64(0x1000000000A1B2), recs[0].FileRef)
	assert.Equal(t, uint64(5), recs[0].ParentFileRef)
	assert.Equal(t, model.OpCreate, recs[0].Operation)
	assert.Equal(t, model.TypeDocument, recs[0].FileType)
	assert.Equal(t, ".txt", recs[0].Extension)

	assert.Equal(t, model.OpModify, recs[1].Operation)
	assert.Equal(t, model.TypeVideo, recs[1].FileType)
	assert.Equal(t, ".mp4", recs[1].Extension)

	assert.Equal(t, model.OpRename, recs[2].Operation)
	assert.Equal(t, model.TypeFolder, recs[2].FileType)
	assert.Equal(t, model.NoExtension, recs[2].Extension)
	assert.True(t, recs[2].IsDirectory())
}

func TestDecodeIsPure(t *testing.T) {
	t.Parallel()

	buf := usntest.Buffer(9,
		usntest.Record{Name: "REPORT.PDF", USN: 1, TimeStamp: 133000000000000000, Reason: model.ReasonDataExtend | model.ReasonClose}.Encode(),
		usntest.Record{Name: "x.go", USN: 2, Reason: model.ReasonFileDelete}.Encode(),
	)
	_, first := collect(t, buf)
	_, second := collect(t, buf)
	assert.Equal(t, first, second)

	b, err := Decode(buf)
	require.NoError(t, err)
	again := slices.Collect(b.Records())
	assert.Equal(t, first, slices.Collect(b.Records()))
	assert.Equal(t, first, again)
}

func TestDecodeTruncatedMidRecord(t *testing.T) {
	t.Parallel()

	one := usntest.Record{Name: "first.txt", USN: 1}.Encode()
	two := usntest.Record{Name: "second.txt", USN: 2}.Encode()
	full := usntest.Buffer(50, one, two)

	// 每个截断点都不能产生半条或重复的记录
	for cut := 8; cut < len(full); cut++ {
		b, recs := collect(t, full[:cut])
		assert.Equal(t, int64(50), b.NextUSN)
		switch {
		case cut < 8+len(one):
			assert.Empty(t, recs, "cut=%d", cut)
		default:
			require.Len(t, recs, 1, "cut=%d", cut)
			assert.Equal(t, "first.txt", recs[0].FileName)
		}
		if cut != 8 && cut != 8+len(one) {
			assert.NotEqual(t, AbortNone, b.Aborted(), "cut=%d", cut)
		}
	}
}

func TestDecodeZeroLengthStops(t *testing.T) {
	t.Parallel()

	buf := usntest.Buffer(1, usntest.Record{Name: "a.txt", USN: 1}.Encode())
	buf = append(buf, make([]byte, 128)...)
	buf = append(buf, usntest.Record{Name: "unreachable.txt", USN: 3}.Encode()...)

	b, recs := collect(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, AbortZeroLength, b.Aborted())
}

func TestDecodeRecordLengthBeyondBuffer(t *testing.T) {
	t.Parallel()

	rec := usntest.Record{Name: "a.txt", USN: 1}.Encode()
	binary.LittleEndian.PutUint32(rec[0:], 4096)
	b, recs := collect(t, usntest.Buffer(1, rec))
	assert.Empty(t, recs)
	assert.Equal(t, AbortRecordBound, b.Aborted())
}

func TestDecodeRecordLengthBelowHeader(t *testing.T) {
	t.Parallel()

	rec := usntest.Record{Name: "a.txt", USN: 1}.Encode()
	binary.LittleEndian.PutUint32(rec[0:], 16)
	b, recs := collect(t, usntest.Buffer(1, rec))
	assert.Empty(t, recs)
	assert.Equal(t, AbortRecordBound, b.Aborted())
}

func TestDecodeNameBeyondRecord(t *testing.T) {
	t.Parallel()

	rec := usntest.Record{Name: "a.txt", USN: 1}.Encode()
	binary.LittleEndian.PutUint16(rec[56:], 2000)
	b, recs := collect(t, usntest.Buffer(1, rec))
	assert.Empty(t, recs)
	assert.Equal(t, AbortNameBound, b.Aborted())
}

func TestDecodeSkipsNonV2Records(t *testing.T) {
	t.Parallel()

	buf := usntest.Buffer(1,
		usntest.Record{Name: "v3.txt", USN: 1, Major: 3}.Encode(),
		usntest.Record{Name: "v2.txt", USN: 2}.Encode(),
	)
	b, recs := collect(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "v2.txt", recs[0].FileName)
	assert.Equal(t, AbortNone, b.Aborted())
}

func TestDecodeInvalidUTF16(t *testing.T) {
	t.Parallel()

	// 孤立的高代理项 + 'a'
	raw := []byte{0x00, 0xD8, 'a', 0x00}
	buf := usntest.Buffer(1, usntest.Record{USN: 1}.EncodeRawName(raw))
	_, recs := collect(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "\uFFFDa", recs[0].FileName)
}

func TestDecodeNameOddLength(t *testing.T) {
	t.Parallel()

	raw := []byte{'o', 0x00, 'k', 0x00, 'x'}
	_, recs := collect(t, usntest.Buffer(1, usntest.Record{USN: 1}.EncodeRawName(raw)))
	require.Len(t, recs, 1)
	assert.Equal(t, "ok\uFFFD", recs[0].FileName)
}

func TestDecodeJournalTime(t *testing.T) {
	t.Parallel()

	// 2021-01-01T00:00:00Z
	const ft = 132539328000000000
	_, recs := collect(t, usntest.Buffer(1, usntest.Record{Name: "a", USN: 1, TimeStamp: ft}.Encode()))
	require.Len(t, recs, 1)
	assert.Equal(t, "2021-01-01T00:00:00Z", recs[0].JournalTime.Format("2006-01-02T15:04:05Z07:00"))
}

func TestRecordsStopsWhenConsumerBreaks(t *testing.T) {
	t.Parallel()

	buf := usntest.Buffer(1,
		usntest.Record{Name: "a", USN: 1}.Encode(),
		usntest.Record{Name: "b", USN: 2}.Encode(),
	)
	b, err := Decode(buf)
	require.NoError(t, err)
	n := 0
	for range b.Records() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}
