//go:build !windows

package monitor

import "github.com/Hara602/usnSentry/internal/model"

func openSession(model.Volume) (Session, error) {
	return nil, ErrUnsupported
}
