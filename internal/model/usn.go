package model

import (
	"fmt"
	"strings"
)

// USN_RECORD_V2 布局 (winioctl.h)
/*
typedef struct {
	DWORD         RecordLength;              // 0
	WORD          MajorVersion;              // 4
	WORD          MinorVersion;              // 6
	DWORDLONG     FileReferenceNumber;       // 8
	DWORDLONG     ParentFileReferenceNumber; // 16
	USN           Usn;                       // 24
	LARGE_INTEGER TimeStamp;                 // 32
	DWORD         Reason;                    // 40
	DWORD         SourceInfo;                // 44
	DWORD         SecurityId;                // 48
	DWORD         FileAttributes;            // 52
	WORD          FileNameLength;            // 56
	WORD          FileNameOffset;            // 58
	WCHAR         FileName[1];               // 60
} USN_RECORD_V2;
*/
const (
	RecordV2HeaderSize = 60
	RecordMajorV2      = 2

	// READ_USN_JOURNAL_DATA_V0: StartUsn, ReasonMask, ReturnOnlyOnClose, Timeout, BytesToWaitFor, UsnJournalID
	ReadJournalDataV0Size = 40
	// USN_JOURNAL_DATA_V0: UsnJournalID, FirstUsn, NextUsn, LowestValidUsn, MaxUsn, MaximumSize, AllocationDelta
	JournalDataV0Size = 56
)

const FileAttributeDirectory = 0x10

// Reason USN 记录的原因位掩码，可同时置多个位
type Reason uint32

const (
	ReasonDataOverwrite       Reason = 0x00000001
	ReasonDataExtend          Reason = 0x00000002
	ReasonDataTruncation      Reason = 0x00000004
	ReasonNamedDataOverwrite  Reason = 0x00000010
	ReasonNamedDataExtend     Reason = 0x00000020
	ReasonNamedDataTruncation Reason = 0x00000040
	ReasonFileCreate          Reason = 0x00000100
	ReasonFileDelete          Reason = 0x00000200
	ReasonEAChange            Reason = 0x00000400
	ReasonSecurityChange      Reason = 0x00000800
	ReasonRenameOldName       Reason = 0x00001000
	ReasonRenameNewName       Reason = 0x00002000
	ReasonIndexableChange     Reason = 0x00004000
	ReasonBasicInfoChange     Reason = 0x00008000
	ReasonHardLinkChange      Reason = 0x00010000
	ReasonCompressionChange   Reason = 0x00020000
	ReasonEncryptionChange    Reason = 0x00040000
	ReasonObjectIDChange      Reason = 0x00080000
	ReasonReparsePointChange  Reason = 0x00100000
	ReasonStreamChange        Reason = 0x00200000
	ReasonTransactedChange    Reason = 0x00400000
	ReasonIntegrityChange     Reason = 0x00800000
	ReasonClose               Reason = 0x80000000

	// ReasonAll 读日志时选择所有事件类型
	ReasonAll Reason = 0xFFFFFFFF
)

var reasonNames = []struct {
	flag Reason
	name string
}{
	{ReasonDataOverwrite, "DATA_OVERWRITE"},
	{ReasonDataExtend, "DATA_EXTEND"},
	{ReasonDataTruncation, "DATA_TRUNCATION"},
	{ReasonNamedDataOverwrite, "NAMED_DATA_OVERWRITE"},
	{ReasonNamedDataExtend, "NAMED_DATA_EXTEND"},
	{ReasonNamedDataTruncation, "NAMED_DATA_TRUNCATION"},
	{ReasonFileCreate, "FILE_CREATE"},
	{ReasonFileDelete, "FILE_DELETE"},
	{ReasonEAChange, "EA_CHANGE"},
	{ReasonSecurityChange, "SECURITY_CHANGE"},
	{ReasonRenameOldName, "RENAME_OLD_NAME"},
	{ReasonRenameNewName, "RENAME_NEW_NAME"},
	{ReasonIndexableChange, "INDEXABLE_CHANGE"},
	{ReasonBasicInfoChange, "BASIC_INFO_CHANGE"},
	{ReasonHardLinkChange, "HARD_LINK_CHANGE"},
	{ReasonCompressionChange, "COMPRESSION_CHANGE"},
	{ReasonEncryptionChange, "ENCRYPTION_CHANGE"},
	{ReasonObjectIDChange, "OBJECT_ID_CHANGE"},
	{ReasonReparsePointChange, "REPARSE_POINT_CHANGE"},
	{ReasonStreamChange, "STREAM_CHANGE"},
	{ReasonTransactedChange, "TRANSACTED_CHANGE"},
	{ReasonIntegrityChange, "INTEGRITY_CHANGE"},
	{ReasonClose, "CLOSE"},
}

// Has 是否包含任意一个给定的位
func (r Reason) Has(flags Reason) bool {
	return r&flags != 0
}

// String 例如 "DATA_EXTEND|CLOSE"，未知位以十六进制附在末尾
func (r Reason) String() string {
	if r == 0 {
		return "NONE"
	}
	var parts []string
	rest := r
	for _, n := range reasonNames {
		if r&n.flag != 0 {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
