package derive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// MissingPolicy decides what a metric does when one of its inputs is missing.
type MissingPolicy string

const (
	MissingFail  MissingPolicy = "fail"
	MissingBlank MissingPolicy = "blank"
)

// Request selects rows and columns for a derived table.
type Request struct {
	// Start and End bound the interval start times, inclusive, on the
	// records' reference year. A zero bound is open and Start after End
	// selects nothing. Dated bounds running into the next year wrap past
	// December 31.
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
	// HourFrom and HourTo bound the hour of day, inclusive. HourFrom > HourTo
	// wraps past midnight.
	HourFrom  *int          `json:"hour_from,omitempty"`
	HourTo    *int          `json:"hour_to,omitempty"`
	Variables []string      `json:"variables,omitempty"`
	Metrics   []string      `json:"metrics,omitempty"`
	OnMissing MissingPolicy `json:"on_missing,omitempty"`
}

// requestDoc is the YAML form of a Request. Bounds are read as text so a
// request file takes every form ParseBound does.
type requestDoc struct {
	Start     string        `yaml:"start"`
	End       string        `yaml:"end"`
	HourFrom  *int          `yaml:"hour_from"`
	HourTo    *int          `yaml:"hour_to"`
	Variables []string      `yaml:"variables"`
	Metrics   []string      `yaml:"metrics"`
	OnMissing MissingPolicy `yaml:"on_missing"`
}

// Validate checks the parts of a request that do not depend on the records.
func (r Request) Validate() error {
	switch r.OnMissing {
	case "", MissingFail, MissingBlank:
	default:
		return fmt.Errorf("%w: on_missing must be %q or %q, got %q", ErrInvalidRequest, MissingFail, MissingBlank, r.OnMissing)
	}
	for _, h := range []*int{r.HourFrom, r.HourTo} {
		if h != nil && (*h < 0 || *h > 23) {
			return fmt.Errorf("%w: hour %d outside 0..23", ErrInvalidRequest, *h)
		}
	}
	return nil
}

// ParseRequestYAML reads a request document. Unknown keys are rejected and an
// empty document yields the zero request.
func ParseRequestYAML(data []byte) (Request, error) {
	var doc requestDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	req := Request{
		HourFrom:  doc.HourFrom,
		HourTo:    doc.HourTo,
		Variables: doc.Variables,
		Metrics:   doc.Metrics,
		OnMissing: doc.OnMissing,
	}
	var err error
	if req.Start, err = ParseBound(doc.Start, false); err != nil {
		return Request{}, err
	}
	if req.End, err = ParseBound(doc.End, true); err != nil {
		return Request{}, err
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

type hourWindow struct {
	from, to int
}

func (r Request) hourWindow() hourWindow {
	w := hourWindow{from: 0, to: 23}
	if r.HourFrom != nil {
		w.from = *r.HourFrom
	}
	if r.HourTo != nil {
		w.to = *r.HourTo
	}
	return w
}

func (w hourWindow) contains(hour int) bool {
	if w.from <= w.to {
		return hour >= w.from && hour <= w.to
	}
	return hour >= w.from || hour <= w.to
}

// ForColumn narrows r to a single column, a field or a metric, for views
// that read one column. A metric is selected together with its inputs.
func (r Request) ForColumn(name string) Request {
	if m, ok := LookupMetric(name); ok {
		r.Variables = m.InputNames()
		r.Metrics = []string{name}
		return r
	}
	r.Variables = []string{name}
	r.Metrics = nil
	return r
}
