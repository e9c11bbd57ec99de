package bind

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "allsky/internal/platform/errors"
)

type window struct {
	StartDate string   `json:"start_date" validate:"required,civil_date"`
	Start     *float64 `json:"sidereal_start" validate:"omitempty,sidereal_hour"`
	Limit     float64  `json:"time_limit" validate:"min=0,max=12"`
}

func post(body string) *http.Request {
	return httptest.NewRequest("POST", "/", strings.NewReader(body))
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[window](post(`{"start_date":"2020-01-01","sidereal_start":23.5,"time_limit":0.5}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StartDate != "2020-01-01" || got.Start == nil || *got.Start != 23.5 || got.Limit != 0.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_EmptyBody(t *testing.T) {
	_, err := ParseJSON[window](httptest.NewRequest("POST", "/", http.NoBody))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}

	// GET tolerates a missing body
	got, err := ParseJSON[window](httptest.NewRequest("GET", "/", http.NoBody))
	if err != nil || got != (window{}) {
		t.Fatalf("GET empty body: %+v %v", got, err)
	}
}

func TestParseJSON_AllowEmptyBody(t *testing.T) {
	type note struct {
		Note string `json:"note"`
	}
	got, err := ParseJSON[note](httptest.NewRequest("POST", "/", http.NoBody), JSONOptions{AllowEmptyBody: true})
	if err != nil || got != (note{}) {
		t.Fatalf("got %+v err %v", got, err)
	}
	got, err = ParseJSON[note](post(`{}`), JSONOptions{AllowEmptyBody: true, MaxBytes: 8})
	if err != nil || got != (note{}) {
		t.Fatalf("got %+v err %v", got, err)
	}
}

func TestParseJSON_DecodeFailures(t *testing.T) {
	cases := map[string]struct {
		body string
		opts []JSONOptions
	}{
		"invalid":       {body: `{`},
		"unknown field": {body: `{"start_date":"2020-01-01","boom":1}`},
		"wrong type":    {body: `{"start_date":20200101}`},
		"too large":     {body: `{"start_date":"2020-01-01"}`, opts: []JSONOptions{{MaxBytes: 5, DisallowUnknown: true}}},
	}
	for name, c := range cases {
		_, err := ParseJSON[window](post(c.body), c.opts...)
		if perr.CodeOf(err) != perr.ErrorCodeJSON {
			t.Fatalf("%s: expected JSON error, got %v (%v)", name, perr.CodeOf(err), err)
		}
	}
}

func TestParseJSON_UnknownAllowed(t *testing.T) {
	got, err := ParseJSON[window](post(`{"start_date":"2020-01-01","extra":"ok"}`), JSONOptions{})
	if err != nil || got.StartDate != "2020-01-01" {
		t.Fatalf("got %+v err %v", got, err)
	}
}

func TestParseJSON_TrailingData_Seam(t *testing.T) {
	orig := jsonMore
	jsonMore = func(*json.Decoder) bool { return true }
	defer func() { jsonMore = orig }()

	_, err := ParseJSON[window](post(`{"start_date":"2020-01-01"}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for trailing data, got %v", err)
	}
}

func TestParseJSON_ValidationCarriesField(t *testing.T) {
	cases := []struct {
		body, field, msg string
	}{
		{`{"start_date":"01/01/2020"}`, "start_date", "start_date must be a date formatted YYYY-MM-DD"},
		{`{"start_date":"2020-01-01","sidereal_start":24}`, "sidereal_start", "sidereal_start must be a sidereal hour in [0, 24)"},
		{`{"start_date":"2020-01-01","time_limit":13}`, "time_limit", "time_limit must be at most 12"},
		{`{"start_date":"2020-01-01","time_limit":-1}`, "time_limit", "time_limit must be at least 0"},
	}
	for _, c := range cases {
		_, err := ParseJSON[window](post(c.body))
		e, ok := perr.As(err)
		if !ok || e.Code() != perr.ErrorCodeValidation {
			t.Fatalf("%s: expected validation error, got %v", c.body, err)
		}
		if e.Field() != c.field || e.ToWire().Message != c.msg {
			t.Fatalf("%s: field=%q msg=%q", c.body, e.Field(), e.ToWire().Message)
		}
	}
}

func TestParseJSON_InvalidValidationError_Path(t *testing.T) {
	_, err := ParseJSON[int](post(`5`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON-coded error, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestLocalMinute(t *testing.T) {
	type at struct {
		At string `json:"sidereal_datetime" validate:"local_minute"`
	}
	if err := Get().Validator.Struct(at{At: "2020-01-01T22:30"}); err != nil {
		t.Fatalf("valid minute rejected: %v", err)
	}
	err := Get().Validator.Struct(at{At: "2020-01-01 22:30"})
	field, msg := ValidationFieldAndMessage(err)
	if field != "sidereal_datetime" || msg != "sidereal_datetime must be a local time formatted YYYY-MM-DDTHH:MM" {
		t.Fatalf("field=%q msg=%q", field, msg)
	}
}

func TestTagNameFunc(t *testing.T) {
	type s struct {
		Tagged int `json:"foo,omitempty" validate:"min=1"`
		Secret int `json:"-" validate:"min=1"`
		Plain  int `validate:"min=1"`
	}
	err := Get().Validator.Struct(s{Tagged: 1, Secret: 1})
	if field, _ := ValidationFieldAndMessage(err); field != "Plain" {
		t.Fatalf("expected Plain, got %s", field)
	}
	err = Get().Validator.Struct(s{Tagged: 1, Plain: 1})
	if field, _ := ValidationFieldAndMessage(err); field != "Secret" {
		t.Fatalf("expected Secret, got %s", field)
	}
	err = Get().Validator.Struct(s{Secret: 1, Plain: 1})
	if field, _ := ValidationFieldAndMessage(err); field != "foo" {
		t.Fatalf("expected foo, got %s", field)
	}
}

func TestValidationFieldAndMessage_Passthrough(t *testing.T) {
	if f, m := ValidationFieldAndMessage(nil); f != "" || m != "" {
		t.Fatalf("nil: %q %q", f, m)
	}
	if f, m := ValidationFieldAndMessage(errors.New("boom")); f != "" || m != "boom" {
		t.Fatalf("generic: %q %q", f, m)
	}
}

func TestRegisterValidation_Overwrites(t *testing.T) {
	if err := RegisterValidation("dupe_tag", func(FieldLevel) bool { return false }); err != nil {
		t.Fatal(err)
	}
	if err := RegisterValidation("dupe_tag", func(FieldLevel) bool { return true }); err != nil {
		t.Fatal(err)
	}
	type S struct {
		N int `json:"n" validate:"dupe_tag"`
	}
	if err := Get().Validator.Struct(S{}); err != nil {
		t.Fatalf("expected overwrite to pass, got %v", err)
	}
}
