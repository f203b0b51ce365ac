//go:build !windows

package volume

import (
	"errors"

	"github.com/Hara602/usnSentry/internal/model"
)

var errUnsupported = errors.New("volume discovery is only available on Windows")

type stubProber struct{}

func newProber() Prober { return stubProber{} }

func (stubProber) LogicalDrives() (uint32, error) { return 0, errUnsupported }

func (stubProber) DriveType(string) model.DriveType { return model.DriveUnknown }

func (stubProber) FileSystemName(string) (string, error) { return "", errUnsupported }
