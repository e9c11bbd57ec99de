// Package domain holds DTOs for images http and service contracts
package domain

// Dates are civil dates in the observatory calendar, YYYY-MM-DD.
// sidereal_datetime is a local wall clock minute, YYYY-MM-DDTHH:MM

// SelectInput describes one selection over a range of observing nights.
// Exactly one of SiderealDatetime or SiderealStart must be set
type SelectInput struct {
	StartDate string `json:"start_date" validate:"required,civil_date" example:"2020-01-01"`
	EndDate   string `json:"end_date" validate:"required,civil_date" example:"2020-01-31"`

	SiderealDatetime string   `json:"sidereal_datetime,omitempty" validate:"omitempty,local_minute" example:"2020-01-01T22:30"`
	SiderealStart    *float64 `json:"sidereal_start,omitempty" validate:"omitempty,sidereal_hour" example:"6.5"`
	SiderealEnd      *float64 `json:"sidereal_end,omitempty" validate:"omitempty,sidereal_hour" example:"7.5"`

	// TimeLimit is the nearest match tolerance in sidereal hours.
	// Omitted or 0 uses the server default (ALLSKY_IMAGES_TIME_LIMIT, 0.5); negative is rejected
	TimeLimit float64 `json:"time_limit,omitempty" validate:"min=0,max=12" example:"0.5"`

	LimitClearImages bool `json:"limit_clear_images,omitempty" example:"false"`
	OnlyCalculate    bool `json:"only_calculate,omitempty" example:"false"`
}

// Selection is the outcome of a select call
type Selection struct {
	Images        []string `json:"images"`
	Count         int      `json:"count" example:"31"`
	TotalSizeMB   float64  `json:"total_size_mb" example:"331.4"`
	SiderealStart float64  `json:"sidereal_start" example:"6.5"`
	SiderealEnd   *float64 `json:"sidereal_end"`
}

// SizeEstimate is the size of a selection without its identifiers
type SizeEstimate struct {
	TotalSizeMB float64 `json:"total_size_mb" example:"331.4"`
	Count       int     `json:"count" example:"31"`
}

// NightCount is the number of images captured in one night
type NightCount struct {
	NightDate string `json:"night_date" example:"20200101"`
	Images    int    `json:"image_count_per_night" example:"412"`
}

// SiderealReading converts one local time to local sidereal time
type SiderealReading struct {
	Local         string  `json:"local" example:"2020-01-01T22:30:00+10:30"`
	UTC           string  `json:"utc" example:"2020-01-01T12:00:00Z"`
	SiderealHours float64 `json:"sidereal_hours" example:"4.97"`
}

// Bundle names a zip archive and the images it will hold
type Bundle struct {
	Filename string
	Images   []string
	Bytes    int64
}

// Summary describes the loaded catalogue
type Summary struct {
	Loaded     bool   `json:"loaded"`
	Source     string `json:"source" example:"csv"`
	Images     int    `json:"images" example:"120000"`
	Nights     int    `json:"nights" example:"300"`
	FirstNight string `json:"first_night,omitempty" example:"20190601"`
	LastNight  string `json:"last_night,omitempty" example:"20200531"`
}
