package sidereal

import (
	"math"
	"testing"
	"time"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// circular difference on the 24h dial
func dialDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, 24-d)
}

func TestJulianDate(t *testing.T) {
	cases := []struct {
		name string
		y    int
		m    time.Month
		d    int
		want float64
	}{
		{"j2000 midnight", 2000, time.January, 1, 2451544.5},
		{"meeus example", 1987, time.January, 27, 2446822.5},
		{"modern", 2020, time.January, 1, 2458849.5},
		{"last julian day", 1582, time.October, 4, 2299159.5},
		{"first gregorian day", 1582, time.October, 15, 2299160.5},
		{"reform gap clamps to 15th", 1582, time.October, 10, 2299160.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := JulianDate(tc.y, tc.m, tc.d); got != tc.want {
				t.Fatalf("JulianDate(%d-%d-%d) = %v want %v", tc.y, tc.m, tc.d, got, tc.want)
			}
		})
	}
}

func TestAt_GreenwichJ2000(t *testing.T) {
	// GMST at 2000-01-01 12:00 UT is 18.697374558h
	got := At(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC), 0)
	if !near(got, 18.697374558, 1e-6) {
		t.Fatalf("GMST J2000 = %.9f", got)
	}
}

func TestLocal_J2000MatchesFormula(t *testing.T) {
	jd := 2451544.5
	c := (jd - 2451545.0) / 36525
	gst := (24110.54841 + 8640184.812866*c + 0.093104*c*c - 0.0000062*c*c*c) / 3600
	want := math.Mod(gst+1.00273790935*12+138.60298/15, 24)

	got := Local(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if !near(got, want, 1e-6) {
		t.Fatalf("Local = %.9f want %.9f", got, want)
	}
	if !near(got, 3.937573225, 1e-6) {
		t.Fatalf("Local = %.9f want 3.937573225", got)
	}
}

func TestLocal_ConvertsToUTC(t *testing.T) {
	adl, err := time.LoadLocation("Australia/Adelaide")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	utc := time.Date(2020, 1, 1, 13, 30, 0, 0, time.UTC)
	if a, b := Local(utc), Local(utc.In(adl)); a != b {
		t.Fatalf("zone changed result: %v vs %v", a, b)
	}
	if got := Local(utc); !near(got, 5.451948505, 1e-6) {
		t.Fatalf("Local = %.9f", got)
	}
}

func TestLocal_IgnoresSubSecond(t *testing.T) {
	base := time.Date(2021, 6, 3, 10, 20, 30, 0, time.UTC)
	if Local(base) != Local(base.Add(999*time.Millisecond)) {
		t.Fatal("sub-second part should not change the result")
	}
}

func TestLocal_Range(t *testing.T) {
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		ts := start.Add(time.Duration(i) * 7919 * time.Minute)
		got := Local(ts)
		if got < 0 || got >= 24 {
			t.Fatalf("Local(%s) = %v out of [0,24)", ts, got)
		}
	}
	// dates before J2000 give negative polynomial terms
	for _, lon := range []float64{-180, -90, 0, 90, 180} {
		got := At(time.Date(1700, 3, 1, 0, 0, 0, 0, time.UTC), lon)
		if got < 0 || got >= 24 {
			t.Fatalf("At(1700, %v) = %v out of range", lon, got)
		}
	}
}

func TestLocal_PeriodicOverSiderealDay(t *testing.T) {
	const siderealDay = 23*time.Hour + 56*time.Minute + 4*time.Second + 90500*time.Microsecond
	starts := []time.Time{
		time.Date(2020, 1, 1, 3, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 15, 23, 30, 0, 0, time.UTC),
	}
	for _, s := range starts {
		a := Local(s)
		b := Local(s.Add(siderealDay))
		// whole-second resolution drops up to ~0.1s of the step
		if d := dialDiff(a, b); d > 1e-4 {
			t.Fatalf("not periodic from %s: %v vs %v (diff %v)", s, a, b, d)
		}
	}
}

func TestWrap(t *testing.T) {
	cases := map[float64]float64{
		0:     0,
		23.5:  23.5,
		24:    0,
		25.25: 1.25,
		-1:    23,
		-49:   23,
	}
	for in, want := range cases {
		if got := Wrap(in); !near(got, want, 1e-12) {
			t.Fatalf("Wrap(%v) = %v want %v", in, got, want)
		}
	}
	if got := Wrap(-1e-18); got < 0 || got >= 24 {
		t.Fatalf("Wrap tiny negative = %v", got)
	}
}
