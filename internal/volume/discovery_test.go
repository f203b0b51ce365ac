package volume

import (
	"errors"
	"testing"

	"github.com/Hara602/usnSentry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDrive struct {
	dtype model.DriveType
	fs    string
	err   error
}

type fakeProber struct {
	drives map[byte]fakeDrive
	err    error
}

func (p fakeProber) LogicalDrives() (uint32, error) {
	if p.err != nil {
		return 0, p.err
	}
	var mask uint32
	for l := range p.drives {
		mask |= 1 << (l - 'A')
	}
	return mask, nil
}

func (p fakeProber) DriveType(root string) model.DriveType {
	return p.drives[root[0]].dtype
}

func (p fakeProber) FileSystemName(root string) (string, error) {
	d := p.drives[root[0]]
	return d.fs, d.err
}

func letters(vols []model.Volume) string {
	var s []byte
	for _, v := range vols {
		s = append(s, v.Letter)
	}
	return string(s)
}

func TestDiscoverFiltersEligibleVolumes(t *testing.T) {
	t.Parallel()

	p := fakeProber{drives: map[byte]fakeDrive{
		'C': {dtype: model.DriveFixed, fs: "NTFS"},
		'D': {dtype: model.DriveCDROM, fs: "CDFS"},
		'E': {dtype: model.DriveRemovable, fs: "NTFS\x00\x00\x00"},
		'F': {dtype: model.DriveRemovable, fs: "FAT32"},
		'G': {dtype: model.DriveFixed, err: errors.New("access denied")},
		'H': {dtype: model.DriveRemote, fs: "NTFS"},
		'I': {dtype: model.DriveFixed, fs: "ReFS"},
		'Z': {dtype: model.DriveFixed, fs: "NTFS"},
	}}

	vols, err := Discover(p, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "CEZ", letters(vols))

	assert.Equal(t, `\\.\C:`, vols[0].DevicePath)
	assert.Equal(t, "NTFS", vols[1].FileSystem)
	assert.Equal(t, model.DriveRemovable, vols[1].DriveType)
}

func TestDiscoverAllowList(t *testing.T) {
	t.Parallel()

	p := fakeProber{drives: map[byte]fakeDrive{
		'C': {dtype: model.DriveFixed, fs: "NTFS"},
		'D': {dtype: model.DriveFixed, fs: "NTFS"},
		'E': {dtype: model.DriveFixed, fs: "NTFS"},
	}}

	vols, err := Discover(p, zaptest.NewLogger(t), "e", " c ")
	require.NoError(t, err)
	assert.Equal(t, "CE", letters(vols))
}

func TestDiscoverMaskError(t *testing.T) {
	t.Parallel()

	_, err := Discover(fakeProber{err: errors.New("boom")}, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "boom")
}

func TestDiscoverNoDrives(t *testing.T) {
	t.Parallel()

	vols, err := Discover(fakeProber{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Empty(t, vols)
}
