package scale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibration_Grams(t *testing.T) {
	c := Calibration{Offset: DefaultOffset, Scale: DefaultScale}
	assert.InDelta(t, 0, c.Grams(DefaultOffset), 1e-9)
	assert.InDelta(t, 500, c.Grams(DefaultOffset-500*948.79), 1e-6)
}

func TestNew_RejectsZeroScale(t *testing.T) {
	_, err := New(&FakeRaw{}, Calibration{Offset: 1})
	require.Error(t, err)
}

func TestSample_Averages(t *testing.T) {
	raw := &FakeRaw{Values: []int64{100, 200, 300}}
	s, err := New(raw, Calibration{Offset: 0, Scale: 2})
	require.NoError(t, err)

	g, err := s.Sample(3)
	require.NoError(t, err)
	assert.InDelta(t, 100, g, 1e-9)
}

func TestSample_SkipsFailedReads(t *testing.T) {
	raw := &FakeRaw{
		Values: []int64{0, 400, 400},
		Errs:   []error{errors.New("timeout")},
	}
	s, err := New(raw, Calibration{Scale: 1})
	require.NoError(t, err)

	g, err := s.Sample(3)
	require.NoError(t, err)
	assert.InDelta(t, 400, g, 1e-9)
}

func TestSample_AllFailed(t *testing.T) {
	boom := errors.New("timeout")
	raw := &FakeRaw{Values: []int64{1}, Errs: []error{boom, boom}}
	s, err := New(raw, Calibration{Scale: 1})
	require.NoError(t, err)

	_, err = s.Sample(2)
	require.ErrorIs(t, err, ErrNoSamples)
	assert.Contains(t, err.Error(), "timeout")
}

func TestTare(t *testing.T) {
	raw := &FakeRaw{Values: []int64{1000, 1002}}
	s, err := New(raw, Calibration{Scale: -2})
	require.NoError(t, err)

	off, err := s.Tare(2)
	require.NoError(t, err)
	assert.InDelta(t, 1001, off, 1e-9)

	g, err := s.Sample(2)
	require.NoError(t, err)
	assert.InDelta(t, 0, g, 1e-9)
}

func TestIIO_ReadRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("7996169\n"), 0o644))

	d, err := NewIIO(path)
	require.NoError(t, err)
	v, err := d.ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, int64(7996169), v)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err = d.ReadRaw()
	assert.Error(t, err)
}

func TestNewIIO_Missing(t *testing.T) {
	_, err := NewIIO(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestFake_Script(t *testing.T) {
	f := NewFake(10)
	f.Script(1, 2)

	for _, want := range []float64{1, 2, 2} {
		g, err := f.Sample(10)
		require.NoError(t, err)
		assert.Equal(t, want, g)
	}
	assert.Equal(t, 3, f.Calls())

	f.SetError(errors.New("bus"))
	_, err := f.Sample(1)
	assert.Error(t, err)
}
