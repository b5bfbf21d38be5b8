// This file holds the helpers that turn path values, query parameters and
// JSON bodies into domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budgetku/internal/core"
)

const maxBodyBytes = 1 << 20

// WindowParams is the period and reference date of a windowed query.
type WindowParams struct {
	Period core.Period
	Ref    time.Time
}

// ParseWindowParams reads ?period= and ?date=. A missing period falls back
// to defPeriod and a missing date to now. Date-only values are read in loc.
func ParseWindowParams(r *http.Request, defPeriod core.Period, now time.Time, loc *time.Location) (WindowParams, error) {
	q := r.URL.Query()
	params := WindowParams{Period: defPeriod, Ref: now}

	if v := strings.TrimSpace(q.Get("period")); v != "" {
		p, err := core.ParsePeriod(v)
		if err != nil {
			return params, err
		}
		params.Period = p
	}
	if v := strings.TrimSpace(q.Get("date")); v != "" {
		t, err := core.ParseDate(v, loc)
		if err != nil {
			return params, fmt.Errorf("%w: %q", core.ErrInvalidDate, v)
		}
		params.Ref = t
	}
	return params, nil
}

// ParseIDParam reads the {id} path value.
func ParseIDParam(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid transaction id %q", errBadRequest, raw)
	}
	return id, nil
}

// ParseMonthParam reads the {month} path value.
func ParseMonthParam(r *http.Request) (core.Month, error) {
	return core.ParseMonth(r.PathValue("month"))
}

// DecodeJSON reads a single JSON value into dst, rejecting unknown fields,
// trailing data and bodies over 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}

// sanitizeInput strips control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}
