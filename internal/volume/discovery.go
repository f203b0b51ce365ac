package volume

import (
	"fmt"
	"strings"

	"github.com/Hara602/usnSentry/internal/model"
	"go.uber.org/zap"
)

// Prober 查询盘符和卷信息的系统接口
type Prober interface {
	// LogicalDrives 26 位盘符掩码，bit0 = A:
	LogicalDrives() (uint32, error)
	DriveType(root string) model.DriveType
	FileSystemName(root string) (string, error)
}

func NewProber() Prober {
	return newProber()
}

// Discover 枚举 A-Z，只保留 NTFS 格式的固定盘和可移动盘。
// 单个盘查询失败时静默排除，只有掩码获取失败才返回错误。
// allow 非空时只保留其中的盘符 (不区分大小写)。
func Discover(p Prober, log *zap.Logger, allow ...string) ([]model.Volume, error) {
	mask, err := p.LogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("get logical drives: %w", err)
	}

	allowed := make(map[byte]bool)
	for _, a := range allow {
		a = strings.TrimSpace(strings.ToUpper(a))
		if a != "" {
			allowed[a[0]] = true
		}
	}

	var vols []model.Volume
	for i := 0; i < 26; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		v := model.NewVolume(byte('A' + i))
		if len(allowed) > 0 && !allowed[v.Letter] {
			continue
		}

		v.DriveType = p.DriveType(v.Root)
		if v.DriveType != model.DriveFixed && v.DriveType != model.DriveRemovable {
			log.Debug("skip volume: drive type", zap.String("volume", v.Name()), zap.Stringer("type", v.DriveType))
			continue
		}

		fs, err := p.FileSystemName(v.Root)
		if err != nil {
			log.Debug("skip volume: volume information", zap.String("volume", v.Name()), zap.Error(err))
			continue
		}
		// 去掉填充的 NUL 和空白
		fs = strings.TrimSpace(strings.Trim(fs, "\x00"))
		if fs != "NTFS" {
			log.Debug("skip volume: filesystem", zap.String("volume", v.Name()), zap.String("fs", fs))
			continue
		}
		v.FileSystem = fs
		vols = append(vols, v)
	}
	return vols, nil
}
