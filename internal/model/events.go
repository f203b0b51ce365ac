package model

import "time"

// Operation 由 reason 位掩码推导出的操作类型
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpDelete Operation = "DELETE"
	OpRename Operation = "RENAME"
	OpModify Operation = "MODIFY"
	OpChange Operation = "CHANGE"
)

// FileType 按扩展名划分的文件类别
type FileType string

const (
	TypeDocument     FileType = "Document"
	TypeSpreadsheet  FileType = "Spreadsheet"
	TypePresentation FileType = "Presentation"
	TypeImage        FileType = "Image"
	TypeVideo        FileType = "Video"
	TypeAudio        FileType = "Audio"
	TypeArchive      FileType = "Archive"
	TypeCode         FileType = "Code"
	TypeMarkup       FileType = "Markup"
	TypeExecutable   FileType = "Executable"
	TypeConfig       FileType = "Config"
	TypeDatabase     FileType = "Database"
	TypeOther        FileType = "Other"
	TypeFolder       FileType = "Folder/No-Extension"
)

// NoExtension 文件名中没有扩展名时输出的占位值
const NoExtension = "(none)"

// ChangeRecord 一条解码后的 USN 日志记录
type ChangeRecord struct {
	Volume        string // e.g., "C:"
	FileName      string
	USN           int64
	FileRef       uint64
	ParentFileRef uint64
	Reason        Reason
	Attributes    uint32
	JournalTime   time.Time // 记录写入日志的时间 (来自记录本身)
	Operation     Operation
	FileType      FileType
	Extension     string // 包含 "."，如 ".txt"；没有时为 NoExtension
	ObservedAt    time.Time
}

// IsDirectory 根据文件属性判断是否为目录
func (r ChangeRecord) IsDirectory() bool {
	return r.Attributes&FileAttributeDirectory != 0
}
