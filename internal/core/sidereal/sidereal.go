// Package sidereal converts UTC timestamps to local apparent sidereal time
package sidereal

import (
	"math"
	"time"
)

// ObservatoryLongitude is the camera site longitude in degrees east
const ObservatoryLongitude = 138.60298

const (
	// j2000 is the Julian date of epoch J2000.0
	j2000 = 2451545.0

	// daysPerCentury is a Julian century in days
	daysPerCentury = 36525.0

	// siderealRate is sidereal hours elapsed per solar hour
	siderealRate = 1.00273790935
)

// Local returns the sidereal time in decimal hours [0, 24) at the observatory
func Local(t time.Time) float64 { return At(t, ObservatoryLongitude) }

// At returns the sidereal time in decimal hours [0, 24) for t at longitude (degrees east)
func At(t time.Time, longitude float64) float64 {
	u := t.UTC()
	jd := JulianDate(u.Year(), u.Month(), u.Day())
	hours := float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
	return Wrap(GST0(jd) + siderealRate*hours + longitude/15)
}

// GST0 returns Greenwich sidereal time at 0h UT for a Julian date, in hours (unreduced)
func GST0(jd float64) float64 {
	t := (jd - j2000) / daysPerCentury
	return (24110.54841 + 8640184.812866*t + 0.093104*t*t - 0.0000062*t*t*t) / 3600
}

// JulianDate returns the Julian date at 0h UT of a civil date.
// Dates up to 1582-10-04 use the Julian calendar. Days inside the 1582 reform gap
// are clamped to 1582-10-15.
func JulianDate(year int, month time.Month, day int) float64 {
	y, m, d := year, int(month), day
	if m <= 2 {
		y--
		m += 12
	}

	var b int
	switch {
	case year <= 1582 && int(month) <= 10 && day <= 4:
		b = 0
	case year == 1582 && month == time.October && day > 4 && day < 15:
		d = 15
		b = -10
	default:
		a := y / 100
		b = 2 - a + a/4
	}

	return math.Trunc(365.25*float64(y+4716)) + math.Trunc(30.6001*float64(m+1)) +
		float64(d+b) - 1524.5
}

// Wrap reduces h onto [0, 24)
func Wrap(h float64) float64 {
	r := h - 24*math.Floor(h/24)
	if r >= 24 {
		return 0
	}
	return r
}
