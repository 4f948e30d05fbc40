package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/epw-viewer/internal/derive"
)

// parseRequest builds a derive request from query parameters:
//
//	start, end          date bounds, see derive.ParseBound
//	hour_from, hour_to  hour-of-day window, 0..23
//	vars, metrics       comma-separated names
//	missing             "fail" (default) or "blank"
func parseRequest(q url.Values) (derive.Request, error) {
	var req derive.Request
	var err error

	if req.Start, err = derive.ParseBound(q.Get("start"), false); err != nil {
		return req, err
	}
	if req.End, err = derive.ParseBound(q.Get("end"), true); err != nil {
		return req, err
	}
	if req.HourFrom, err = parseHour(q, "hour_from"); err != nil {
		return req, err
	}
	if req.HourTo, err = parseHour(q, "hour_to"); err != nil {
		return req, err
	}
	req.Variables = splitList(q.Get("vars"))
	req.Metrics = splitList(q.Get("metrics"))
	req.OnMissing = derive.MissingPolicy(q.Get("missing"))

	return req, req.Validate()
}

func parseHour(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not an integer", derive.ErrInvalidRequest, key, raw)
	}
	return &h, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q is not a boolean", derive.ErrInvalidRequest, key, raw)
	}
	return v, nil
}

func requiredColumn(q url.Values) (string, error) {
	column := strings.TrimSpace(q.Get("var"))
	if column == "" {
		return "", fmt.Errorf("%w: query parameter var is required", derive.ErrInvalidRequest)
	}
	return column, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
