package usn

import (
	"encoding/binary"
	"testing"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReadRequest(t *testing.T) {
	t.Parallel()

	c := model.NewReadCursor(model.JournalState{JournalID: 0x01D2C3B4A5968778, NextUSN: 123456})
	b := EncodeReadRequest(c)
	require.Len(t, b, model.ReadJournalDataV0Size)

	le := binary.LittleEndian
	assert.Equal(t, uint64(123456), le.Uint64(b[0:]))
	assert.Equal(t, uint32(0xFFFFFFFF), le.Uint32(b[8:]))
	assert.Equal(t, uint32(0), le.Uint32(b[12:]), "return only on close")
	assert.Equal(t, uint64(0), le.Uint64(b[16:]), "timeout")
	assert.Equal(t, uint64(1), le.Uint64(b[24:]), "bytes to wait for")
	assert.Equal(t, uint64(0x01D2C3B4A5968778), le.Uint64(b[32:]))
}

func TestDecodeJournalData(t *testing.T) {
	t.Parallel()

	b := make([]byte, model.JournalDataV0Size)
	le := binary.LittleEndian
	le.PutUint64(b[0:], 42)
	le.PutUint64(b[8:], 100)
	le.PutUint64(b[16:], 5000)
	le.PutUint64(b[24:], 100)
	le.PutUint64(b[32:], 1<<62)
	le.PutUint64(b[40:], 32<<20)
	le.PutUint64(b[48:], 8<<20)

	js, err := DecodeJournalData(b)
	require.NoError(t, err)
	assert.Equal(t, model.JournalState{
		JournalID:       42,
		FirstUSN:        100,
		NextUSN:         5000,
		LowestValidUSN:  100,
		MaxUSN:          1 << 62,
		MaximumSize:     32 << 20,
		AllocationDelta: 8 << 20,
	}, js)

	_, err = DecodeJournalData(b[:40])
	assert.Error(t, err)
}

func TestCursorBounds(t *testing.T) {
	t.Parallel()

	c := cursor{buf: []byte{1, 2, 3, 4}}
	_, err := c.u64(0)
	assert.ErrorIs(t, err, errOutOfBounds)
	_, err = c.u32(1)
	assert.ErrorIs(t, err, errOutOfBounds)
	_, err = c.window(-1, 2)
	assert.ErrorIs(t, err, errOutOfBounds)
	_, err = c.window(2, -1)
	assert.ErrorIs(t, err, errOutOfBounds)

	v, err := c.u16(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0403), v)
}
