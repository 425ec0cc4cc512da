package bmx055

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
)

type regWrite struct {
	reg, value byte
}

type fakePort struct {
	writes []regWrite
	data   []byte
	fail   bool
	reads  int
}

func (p *fakePort) WriteReg(reg byte, buf []byte) error {
	if p.fail {
		return halerrors.ErrBusIO
	}
	p.writes = append(p.writes, regWrite{reg, buf[0]})
	return nil
}

func (p *fakePort) ReadReg(reg byte, buf []byte) error {
	p.reads++
	if p.fail {
		return halerrors.ErrBusIO
	}
	copy(buf, p.data)
	return nil
}

func newTestIMU() (*BMX055, *fakePort, *fakePort, *fakePort, *[]time.Duration) {
	acc, gyro, mag := &fakePort{}, &fakePort{}, &fakePort{}
	b := New(acc, gyro, mag)
	var sleeps []time.Duration
	b.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return b, acc, gyro, mag, &sleeps
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func expectConfig(t *testing.T, name string, got []regWrite, expected []regValue) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: expected %d writes, got %v", name, len(expected), got)
	}
	for i, rv := range expected {
		if got[i].reg != rv.reg || got[i].value != rv.value {
			t.Errorf("%s write %d = %02x:%02x, expected %02x:%02x", name, i, got[i].reg, got[i].value, rv.reg, rv.value)
		}
	}
}

func TestInitializeSequence(t *testing.T) {
	b, acc, gyro, mag, sleeps := newTestIMU()
	acc.data = []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	if err := b.Initialize(); err != nil {
		t.Fatal(err)
	}
	expectConfig(t, "acc", acc.writes, accConfig)
	expectConfig(t, "gyro", gyro.writes, gyroConfig)
	expectConfig(t, "mag", mag.writes, magConfig)

	ms := time.Millisecond
	expected := []time.Duration{100 * ms, 100 * ms, 100 * ms, 100 * ms, 100 * ms, 100 * ms, 100 * ms, 100 * ms, 100 * ms, 300 * ms}
	if len(*sleeps) != len(expected) {
		t.Fatalf("Delays %v", *sleeps)
	}
	for i := range expected {
		if (*sleeps)[i] != expected[i] {
			t.Errorf("Delay %d = %v, expected %v", i, (*sleeps)[i], expected[i])
		}
	}

	r, _ := b.GetAcc(X)
	if !near(r.Offset, 16*AccScale) || !near(r.Error, 0) {
		t.Errorf("Accelerometer offset not captured: %+v", r)
	}
}

func TestInitializeBestEffort(t *testing.T) {
	b, acc, gyro, mag, _ := newTestIMU()
	gyro.fail = true
	if err := b.Initialize(); err != nil {
		t.Fatalf("Expected best-effort success, got %v", err)
	}
	if len(acc.writes) != 3 || len(mag.writes) != 5 {
		t.Error("Failure of one part stopped the others")
	}
}

func TestInitializeStrict(t *testing.T) {
	b, _, gyro, mag, _ := newTestIMU()
	b.Strict = true
	gyro.fail = true
	err := b.Initialize()
	var seqErr *halerrors.SequenceError
	if !errors.As(err, &seqErr) || seqErr.Device != "bmx055 gyro" || seqErr.Step != "register 0x0f" {
		t.Fatalf("Expected gyro sequence error, got %v", err)
	}
	if len(mag.writes) != 0 {
		t.Error("Strict initialization continued past the failure")
	}
}

func TestDecodeAcc(t *testing.T) {
	zero := DecodeAcc(make([]byte, 6))
	for i, v := range zero {
		if v != 0 {
			t.Errorf("Axis %d = %v from zeros", i, v)
		}
	}
	for _, test := range []struct {
		lo, hi byte
		raw    int
	}{
		{0xF0, 0x7F, 2047},
		{0xF0, 0x07, 127},
		{0x0F, 0x00, 0},
		{0x00, 0x80, -2048},
		{0xF0, 0xFF, -1},
	} {
		v := DecodeAcc([]byte{test.lo, test.hi, 0, 0, 0, 0})
		if !near(v[0], float64(test.raw)*AccScale) {
			t.Errorf("%02x %02x decoded %v, expected %d counts", test.lo, test.hi, v[0], test.raw)
		}
	}
}

func TestDecodeGyro(t *testing.T) {
	v := DecodeGyro([]byte{0xFF, 0x7F, 0x00, 0x80, 0xFF, 0xFF})
	for i, raw := range []int{32767, -32768, -1} {
		if !near(v[i], float64(raw)*GyroScale) {
			t.Errorf("Axis %d = %v, expected %d counts", i, v[i], raw)
		}
	}
}

func TestDecodeMag(t *testing.T) {
	v := DecodeMag([]byte{0xF8, 0x00, 0x08, 0x0F, 0x00, 0x10, 0, 0})
	for i, raw := range []int{31, 0x0F01, 4096 - 8192} {
		if v[i] != float64(raw) {
			t.Errorf("Axis %d = %v, expected %d", i, v[i], raw)
		}
	}
}

func TestGetUpdatesAllAxes(t *testing.T) {
	b, _, gyro, _, _ := newTestIMU()
	gyro.data = []byte{1, 0, 2, 0, 3, 0}
	r, err := b.GetGyro(Y)
	if err != nil {
		t.Fatal(err)
	}
	if !near(r.Current, 2*GyroScale) {
		t.Errorf("Y = %v", r.Current)
	}
	v, err := b.Gyro()
	if err != nil {
		t.Fatal(err)
	}
	if !near(v.X, GyroScale) || !near(v.Z, 3*GyroScale) {
		t.Errorf("Vector %v", v)
	}
}

func TestGetFailureReturnsPrevious(t *testing.T) {
	b, _, _, mag, _ := newTestIMU()
	mag.data = []byte{0, 1, 0, 0, 0, 0, 0, 0}
	if _, err := b.GetMag(X); err != nil {
		t.Fatal(err)
	}
	mag.fail = true
	r, err := b.GetMag(X)
	if !errors.Is(err, halerrors.ErrBusIO) {
		t.Fatalf("Expected bus error, got %v", err)
	}
	if r.Current != 256 {
		t.Errorf("Reading changed on failure: %v", r.Current)
	}
}

func TestGetRejectsUnknownAxis(t *testing.T) {
	b, acc, _, _, _ := newTestIMU()
	if _, err := b.GetAcc(Axis(3)); !errors.Is(err, halerrors.ErrInvalidArgument) {
		t.Errorf("Expected invalid argument, got %v", err)
	}
	if acc.reads != 0 {
		t.Error("Unknown axis reached the bus")
	}
}
