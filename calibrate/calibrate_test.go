package calibrate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// threshold is a source that reads back garbage below a settle threshold.
type threshold struct {
	settle time.Duration
	delay  time.Duration
	offset int64
	reads  int
	probes []time.Duration
}

func (th *threshold) Reset() error { return nil }
func (th *threshold) IsEOF() bool  { return false }

func (th *threshold) Seek(offset int64, whence int) (int64, error) {
	th.offset = offset
	return offset, nil
}

func (th *threshold) PropagationDelay() time.Duration {
	return th.delay
}

func (th *threshold) SetPropagationDelay(delay time.Duration) {
	th.delay = delay
	th.probes = append(th.probes, delay)
}

func (th *threshold) Read(size int) (data []byte, err error) {
	th.reads++
	data = make([]byte, size)
	for n := range data {
		data[n] = byte(th.offset) + byte(n)
		if th.delay < th.settle {
			data[n] ^= byte(th.reads)
		}
	}
	return
}

func TestNewCalibrator(t *testing.T) {
	assert := assert.New(t)

	cal := NewCalibrator(&threshold{})
	assert.Equal(time.Duration(0), cal.DelayMin)
	assert.Equal(500*time.Microsecond, cal.DelayMax)
	assert.Equal(256, cal.BlockSize)
	assert.Equal(5, cal.Iterations)
	assert.Equal(50, cal.Rounds)
}

func TestCalibrator_Calibrate(t *testing.T) {
	assert := assert.New(t)

	for _, settle := range []time.Duration{
		1 * time.Microsecond,
		37 * time.Microsecond,
		120 * time.Microsecond,
		499 * time.Microsecond,
	} {
		th := &threshold{settle: settle}
		cal := NewCalibrator(th)

		delay, err := cal.Calibrate()
		assert.NoError(err, settle)
		assert.GreaterOrEqual(delay, settle)
		assert.LessOrEqual(delay, cal.DelayMax)
		assert.Equal(delay, th.delay)
	}
}

func TestCalibrator_Calibrate_Widen(t *testing.T) {
	assert := assert.New(t)

	th := &threshold{settle: 100 * time.Microsecond}
	cal := NewCalibrator(th)
	cal.DelayMin = 0
	cal.DelayMax = 10 * time.Microsecond

	delay, err := cal.Calibrate()
	assert.NoError(err)
	assert.GreaterOrEqual(delay, th.settle)

	// The first probes climb above the initial bracket.
	assert.Equal(10*time.Microsecond, th.probes[0])
	assert.Greater(th.probes[1], th.probes[0])
}

func TestCalibrator_Calibrate_Degenerate(t *testing.T) {
	assert := assert.New(t)

	th := &threshold{settle: 5 * time.Microsecond}
	cal := NewCalibrator(th)
	cal.DelayMin = 0
	cal.DelayMax = 0

	delay, err := cal.Calibrate()
	assert.NoError(err)
	assert.GreaterOrEqual(delay, th.settle)
}

func TestCalibrator_Calibrate_AlwaysStable(t *testing.T) {
	assert := assert.New(t)

	th := &threshold{}
	cal := NewCalibrator(th)
	cal.DelayMin = 7 * time.Microsecond

	delay, err := cal.Calibrate()
	assert.NoError(err)
	assert.Equal(7*time.Microsecond, delay)
}

func TestCalibrator_Calibrate_Unstable(t *testing.T) {
	assert := assert.New(t)

	th := &threshold{settle: time.Hour, delay: 3 * time.Microsecond}
	cal := NewCalibrator(th)
	cal.Rounds = 5

	delay, err := cal.Calibrate()
	assert.True(errors.Is(err, ErrUnstable))
	assert.Equal(time.Duration(0), delay)

	var rerr *ErrRounds
	assert.True(errors.As(err, &rerr))
	assert.Equal(5, rerr.Rounds)

	// Only the top of the bracket is ever probed when it is unstable.
	assert.Len(th.probes, 6)
	assert.Equal(cal.DelayMax, th.probes[0])

	// The delay from before calibration is restored.
	assert.Equal(3*time.Microsecond, th.delay)
	assert.Equal(3*time.Microsecond, th.probes[5])
}

func TestCalibrator_Calibrate_Parameters(t *testing.T) {
	assert := assert.New(t)

	for _, tweak := range []func(cal *Calibrator){
		func(cal *Calibrator) { cal.DelayMin = -1 },
		func(cal *Calibrator) { cal.DelayMax = -1 },
		func(cal *Calibrator) { cal.Resolution = 0 },
		func(cal *Calibrator) { cal.BlockSize = 0 },
		func(cal *Calibrator) { cal.Iterations = 1 },
		func(cal *Calibrator) { cal.Rounds = 0 },
	} {
		cal := NewCalibrator(&threshold{})
		tweak(cal)
		_, err := cal.Calibrate()
		assert.Equal(ErrParameter, err)
	}
}

func TestCalibrator_ProbeOffset(t *testing.T) {
	assert := assert.New(t)

	th := &threshold{}
	cal := NewCalibrator(th)
	cal.Offset = 0x100
	cal.Iterations = 3

	_, err := cal.Calibrate()
	assert.NoError(err)
	assert.Equal(int64(0x100), th.offset)
}
