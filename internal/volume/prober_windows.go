//go:build windows

package volume

import (
	"github.com/Hara602/usnSentry/internal/model"
	"golang.org/x/sys/windows"
)

type winProber struct{}

func newProber() Prober { return winProber{} }

func (winProber) LogicalDrives() (uint32, error) {
	return windows.GetLogicalDrives()
}

func (winProber) DriveType(root string) model.DriveType {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return model.DriveUnknown
	}
	return model.DriveType(windows.GetDriveType(p))
}

func (winProber) FileSystemName(root string) (string, error) {
	p, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", err
	}
	var fsName [windows.MAX_PATH + 1]uint16
	err = windows.GetVolumeInformation(p, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName)))
	if err != nil {
		return "", err
	}
	return windows.UTF16ToString(fsName[:]), nil
}
