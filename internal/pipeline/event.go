package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
)

// Message header keys.
const (
	HeaderStation   = "station"
	HeaderDerivedAt = "derived_at"
)

// OutputEvent is one message ready for the sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// RowMessage is the JSON body of a published table row. Missing cells are null.
type RowMessage struct {
	Station   string                 `json:"station"`
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Time      time.Time              `json:"time"`
	Values    map[string]epw.Reading `json:"values"`
	DerivedAt time.Time              `json:"derived_at"`
}

// NewRowMessage pairs a row's values with the table's column names.
func NewRowMessage(loc epw.Location, columns []derive.Column, row derive.Row, derivedAt time.Time) RowMessage {
	values := make(map[string]epw.Reading, len(columns))
	for i, c := range columns {
		values[c.Name] = row.Values[i]
	}
	return RowMessage{
		Station:   loc.StationID(),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Time:      row.Time,
		Values:    values,
		DerivedAt: derivedAt,
	}
}

// Key identifies the row across publishes: the same station and interval
// always produce the same key.
func (m RowMessage) Key() string {
	return m.Station + "-" + m.Time.Format(time.RFC3339)
}

// Event serializes the message.
func (m RowMessage) Event() (OutputEvent, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize row %s: %w", m.Key(), err)
	}
	return OutputEvent{
		Key:   []byte(m.Key()),
		Value: data,
		Headers: map[string]string{
			HeaderStation:   m.Station,
			HeaderDerivedAt: m.DerivedAt.Format(time.RFC3339),
		},
	}, nil
}
