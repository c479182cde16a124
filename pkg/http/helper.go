package http

import (
	"net/http"
	"strconv"
	"time"

	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDateRange reads start/end query parameters as RFC 3339 timestamps
// or plain dates (2006-01-02). Both are required.
func ExtractDateRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid start parameter: " + query.Get("start"))
	}

	end, err := parseTimeParam(query.Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid end parameter: " + query.Get("end"))
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("end must be after start")
	}

	return start, end, nil
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, apperrors.InvalidInput("missing required parameter")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
