package adcsensor

import (
	"errors"
	"testing"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/sensor"
)

type fakeADC struct {
	values map[int][]uint16
	reads  []int
	err    error
	// lit records the indicator state at each conversion.
	ind *fakeIndicator
	lit []byte
}

func (f *fakeADC) ReadChannel(ch int) (uint16, error) {
	f.reads = append(f.reads, ch)
	if f.ind != nil {
		f.lit = append(f.lit, f.ind.value)
	}
	if f.err != nil {
		return 0, f.err
	}
	vs := f.values[ch]
	if len(vs) == 0 {
		return 0, nil
	}
	v := vs[0]
	if len(vs) > 1 {
		f.values[ch] = vs[1:]
	}
	return v, nil
}

type fakeIndicator struct {
	value byte
	sets  []byte
}

func (f *fakeIndicator) Set(v byte) error {
	f.value = v
	f.sets = append(f.sets, v)
	return nil
}

func TestPotentiometerInitializeCapturesOffset(t *testing.T) {
	adc := &fakeADC{values: map[int][]uint16{7: {100, 400}}}
	pm := NewPotentiometer(adc)
	if err := pm.Initialize(); err != nil {
		t.Fatal(err)
	}
	r, err := pm.Read()
	if err != nil {
		t.Fatal(err)
	}
	if r.Offset != 100 || r.Current != 400 || r.Error != 300 {
		t.Errorf("Unexpected reading %+v", r)
	}
	// Max still holds the full scale seed.
	if r.Max != sensor.ADCFullScale || r.Min != 100 {
		t.Errorf("Unexpected extrema %v..%v", r.Min, r.Max)
	}
	if r.RatePercent != 10 {
		t.Errorf("Rate %d%%", r.RatePercent)
	}
	for _, ch := range adc.reads {
		if ch != PotentiometerChannel {
			t.Errorf("Read channel %d", ch)
		}
	}
}

func TestChannelFailureKeepsReading(t *testing.T) {
	adc := &fakeADC{values: map[int][]uint16{7: {200}}}
	pm := NewPotentiometer(adc)
	if _, err := pm.Read(); err != nil {
		t.Fatal(err)
	}
	adc.err = halerrors.ErrBusIO
	r, err := pm.Read()
	if !errors.Is(err, halerrors.ErrBusIO) {
		t.Fatalf("Expected bus error, got %v", err)
	}
	if r.Current != 200 {
		t.Errorf("Reading changed on failure: %+v", r)
	}
}

func TestDistanceReadLightsIndicator(t *testing.T) {
	ind := &fakeIndicator{}
	adc := &fakeADC{values: map[int][]uint16{0: {10}, 1: {11}, 2: {12}, 3: {13}}, ind: ind}
	d := NewDistanceArray(adc, ind)
	rs, err := d.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for p := FrontLeft; p < Positions; p++ {
		if rs[p].Current != float64(10+p) {
			t.Errorf("%v = %v", p, rs[p].Current)
		}
	}
	for i, v := range adc.lit {
		if v != 0x03 {
			t.Errorf("Conversion %d ran with indicator %x", i, v)
		}
	}
	if ind.value != 0 {
		t.Error("Indicator left on")
	}
}

func TestDistanceInitializeCalibratesAll(t *testing.T) {
	ind := &fakeIndicator{}
	adc := &fakeADC{values: map[int][]uint16{0: {5, 50}, 1: {6, 60}, 2: {7, 70}, 3: {8, 80}}}
	d := NewDistanceArray(adc, ind)
	if err := d.Initialize(); err != nil {
		t.Fatal(err)
	}
	r, _ := d.Read(FrontSideRight)
	if r.Offset != 8 || r.Error != 72 {
		t.Errorf("Unexpected reading %+v", r)
	}
}

func TestDistanceUnknownPosition(t *testing.T) {
	d := NewDistanceArray(&fakeADC{}, &fakeIndicator{})
	if _, err := d.Read(Positions); !errors.Is(err, halerrors.ErrInvalidArgument) {
		t.Errorf("Expected invalid argument, got %v", err)
	}
}
