package usn

import (
	"encoding/binary"
	"fmt"

	"github.com/Hara602/usnSentry/internal/model"
)

// EncodeReadRequest 序列化为 READ_USN_JOURNAL_DATA_V0
func EncodeReadRequest(c model.ReadCursor) []byte {
	b := make([]byte, model.ReadJournalDataV0Size)
	binary.LittleEndian.PutUint64(b[0:], uint64(c.StartUSN))
	binary.LittleEndian.PutUint32(b[8:], uint32(c.ReasonMask))
	var onClose uint32
	if c.ReturnOnlyOnClose {
		onClose = 1
	}
	binary.LittleEndian.PutUint32(b[12:], onClose)
	binary.LittleEndian.PutUint64(b[16:], c.Timeout)
	binary.LittleEndian.PutUint64(b[24:], c.BytesToWaitFor)
	binary.LittleEndian.PutUint64(b[32:], c.JournalID)
	return b
}

// DecodeJournalData 解析 FSCTL_QUERY_USN_JOURNAL 返回的 USN_JOURNAL_DATA_V0
func DecodeJournalData(buf []byte) (model.JournalState, error) {
	if len(buf) < model.JournalDataV0Size {
		return model.JournalState{}, fmt.Errorf("usn: journal data is %d bytes, want %d", len(buf), model.JournalDataV0Size)
	}
	le := binary.LittleEndian
	return model.JournalState{
		JournalID:       le.Uint64(buf[0:]),
		FirstUSN:        int64(le.Uint64(buf[8:])),
		NextUSN:         int64(le.Uint64(buf[16:])),
		LowestValidUSN:  int64(le.Uint64(buf[24:])),
		MaxUSN:          int64(le.Uint64(buf[32:])),
		MaximumSize:     le.Uint64(buf[40:]),
		AllocationDelta: le.Uint64(buf[48:]),
	}, nil
}
