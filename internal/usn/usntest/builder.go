// Package usntest builds synthetic FSCTL_READ_USN_JOURNAL output buffers for tests.
package usntest

import (
	"encoding/binary"

	"github.com/Hara602/usnSentry/internal/model"
	"golang.org/x/text/encoding/unicode"
)

// Record describes one USN_RECORD_V2 to encode.
type Record struct {
	Name       string
	USN        int64
	FileRef    uint64
	ParentRef  uint64
	Reason     model.Reason
	Attributes uint32
	TimeStamp  int64  // FILETIME
	Major      uint16 // 0 means 2
}

// Encode returns the record bytes, padded to 8-byte alignment like the kernel does.
func (r Record) Encode() []byte {
	name, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(r.Name))
	if err != nil {
		panic(err)
	}
	return r.EncodeRawName(name)
}

// EncodeRawName encodes the record with name bytes taken verbatim.
func (r Record) EncodeRawName(name []byte) []byte {
	size := model.RecordV2HeaderSize + len(name)
	size = (size + 7) &^ 7
	b := make([]byte, size)

	major := r.Major
	if major == 0 {
		major = model.RecordMajorV2
	}
	le := binary.LittleEndian
	le.PutUint32(b[0:], uint32(size))
	le.PutUint16(b[4:], major)
	le.PutUint64(b[8:], r.FileRef)
	le.PutUint64(b[16:], r.ParentRef)
	le.PutUint64(b[24:], uint64(r.USN))
	le.PutUint64(b[32:], uint64(r.TimeStamp))
	le.PutUint32(b[40:], uint32(r.Reason))
	le.PutUint32(b[52:], r.Attributes)
	le.PutUint16(b[56:], uint16(len(name)))
	le.PutUint16(b[58:], model.RecordV2HeaderSize)
	copy(b[model.RecordV2HeaderSize:], name)
	return b
}

// Buffer prefixes the encoded records with the next-USN value.
func Buffer(next int64, records ...[]byte) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(next))
	for _, r := range records {
		b = append(b, r...)
	}
	return b
}
