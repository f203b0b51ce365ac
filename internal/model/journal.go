package model

import "fmt"

// DriveType 与 GetDriveTypeW 的返回值一致
type DriveType uint32

const (
	DriveUnknown   DriveType = 0
	DriveNoRootDir DriveType = 1
	DriveRemovable DriveType = 2
	DriveFixed     DriveType = 3
	DriveRemote    DriveType = 4
	DriveCDROM     DriveType = 5
	DriveRAMDisk   DriveType = 6
)

func (d DriveType) String() string {
	switch d {
	case DriveNoRootDir:
		return "no-root-dir"
	case DriveRemovable:
		return "removable"
	case DriveFixed:
		return "fixed"
	case DriveRemote:
		return "remote"
	case DriveCDROM:
		return "cdrom"
	case DriveRAMDisk:
		return "ramdisk"
	default:
		return "unknown"
	}
}

// Volume 一个可被监控的卷，发现后只读
type Volume struct {
	Letter     byte   // 'C'
	Root       string // `C:\`
	DevicePath string // `\\.\C:`
	FileSystem string // "NTFS"
	DriveType  DriveType
}

// NewVolume 根据盘符构造卷路径
func NewVolume(letter byte) Volume {
	return Volume{
		Letter:     letter,
		Root:       fmt.Sprintf(`%c:\`, letter),
		DevicePath: fmt.Sprintf(`\\.\%c:`, letter),
	}
}

// Name 例如 "C:"
func (v Volume) Name() string {
	return fmt.Sprintf("%c:", v.Letter)
}

// JournalState 当前日志的身份和下一次读取的位置
type JournalState struct {
	JournalID       uint64
	FirstUSN        int64
	NextUSN         int64
	LowestValidUSN  int64
	MaxUSN          int64
	MaximumSize     uint64
	AllocationDelta uint64
}

// ReadCursor 一次阻塞读取 (FSCTL_READ_USN_JOURNAL) 的参数
type ReadCursor struct {
	StartUSN          int64
	ReasonMask        Reason
	ReturnOnlyOnClose bool
	Timeout           uint64 // 0 = 无限等待
	BytesToWaitFor    uint64
	JournalID         uint64
}

// NewReadCursor 从 NextUSN 开始，选择所有原因位，至少 1 字节才返回
func NewReadCursor(state JournalState) ReadCursor {
	return ReadCursor{
		StartUSN:       state.NextUSN,
		ReasonMask:     ReasonAll,
		Timeout:        0,
		BytesToWaitFor: 1,
		JournalID:      state.JournalID,
	}
}
