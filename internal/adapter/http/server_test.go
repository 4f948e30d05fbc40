package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/epw-viewer/internal/adapter/http"
	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
	"github.com/couchcryptid/epw-viewer/internal/epwtest"
	"github.com/couchcryptid/epw-viewer/internal/observability"
	"github.com/couchcryptid/epw-viewer/internal/store"
)

// --- mocks ---

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockPublisher struct {
	rows int
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, _ epw.Location, table *derive.Table) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.rows = len(table.Rows)
	return m.rows, nil
}

// --- helpers ---

type testEnv struct {
	srv       *httpadapter.Server
	publisher *mockPublisher
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, readyErr error) *testEnv {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	files := store.New(store.Options{Size: 8}, metrics, discardLogger())
	pub := &mockPublisher{}
	api := httpadapter.API{
		Files:          files,
		Publisher:      pub,
		MaxUploadBytes: 1 << 20,
		Metrics:        metrics,
	}
	return &testEnv{
		srv:       httpadapter.NewServer(":0", api, &mockReadiness{err: readyErr}, discardLogger()),
		publisher: pub,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// upload posts doc as a raw body and returns the new file ID.
func (e *testEnv) upload(t *testing.T, doc string) string {
	t.Helper()
	rec := e.do(httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader(doc)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sum store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	return sum.ID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["kind"], body["error"]
}

type tableBody struct {
	Columns []derive.Column `json:"columns"`
	Rows    []struct {
		Values []*float64 `json:"values"`
	} `json:"rows"`
}

// --- health tests ---

func TestHealthzReturns200(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get("/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	env := newTestEnv(t, fmt.Errorf("not ready yet"))
	rec := env.get("/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get("/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get("/healthz")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = env.do(req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

// --- file tests ---

func TestFields(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get("/api/v1/fields")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []derive.CatalogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, len(derive.Catalog()))
}

func TestUpload_RawBody(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader(epwtest.Days(1))))

	require.Equal(t, http.StatusCreated, rec.Code)
	var sum store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "/api/v1/files/"+sum.ID, rec.Header().Get("Location"))
	assert.Equal(t, "724666", sum.Location.WMO)
	assert.Equal(t, 24, sum.Coverage.Records)
}

func TestUpload_Multipart(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile("file", "denver.epw")
	require.NoError(t, err)
	_, err = io.WriteString(fw, epwtest.Days(1))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.do(req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUpload_MultipartWithoutFile(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "invalid_request", kind)
}

func TestUpload_TooLarge(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	api := httpadapter.API{
		Files:          store.New(store.Options{Size: 1}, metrics, discardLogger()),
		MaxUploadBytes: 64,
		Metrics:        metrics,
	}
	srv := httpadapter.NewServer(":0", api, &mockReadiness{}, discardLogger())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader(epwtest.Days(1))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "too_large", kind)
}

func TestUpload_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind string
	}{
		{"short line", epwtest.Text("1999,1,1,1,60,x"), "record"},
		{"no records", epwtest.Text(), "empty"},
		{"bad header", "LOCATION,A,B,C,D,E,north,0,0,0\n", "header"},
		{"out of order", epwtest.Text(epwtest.Line(1999, 1, 1, 2, 60), epwtest.Line(1999, 1, 1, 1, 60)), "sequence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/files", strings.NewReader(tt.doc)))

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			kind, msg := decodeError(t, rec)
			assert.Equal(t, tt.kind, kind)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestGetFile(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id)
	require.Equal(t, http.StatusOK, rec.Code)

	var sum store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, id, sum.ID)
	assert.Equal(t, "DENVER CENTENNIAL, CO, USA", sum.Place.FormattedAddress)
}

func TestGetFile_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.get("/api/v1/files/0123456789abcdef")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "not_found", kind)
}

func TestListAndDeleteFiles(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))
	env.upload(t, epwtest.Days(2))

	rec := env.get("/api/v1/files")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []store.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- table and view tests ---

func TestTable_JSON(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id + "/table?vars=temp_air,wind_speed&metrics=humidex&hour_from=5&hour_to=6")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body tableBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Columns, 3)
	assert.Equal(t, "humidex", body.Columns[2].Name)
	require.Len(t, body.Rows, 2)
	require.NotNil(t, body.Rows[0].Values[0])
	assert.InDelta(t, 5.0, *body.Rows[0].Values[0], 1e-9)
}

func TestTable_DateOnlyEndCoversWholeDay(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(3))

	rec := env.get("/api/v1/files/" + id + "/table?vars=temp_air&start=01-02&end=01-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var body tableBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Rows, 24)
}

func TestTable_OutOfRangeMonthIsEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id + "/table?start=06-01&end=06-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var body tableBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Rows)
}

func TestTable_CSV(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id + "/table?vars=temp_air&format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="724666.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, "time,temp_air", lines[0])
	assert.Equal(t, "2001-01-01 03:00,3", lines[4])
}

func TestTable_Parquet(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id + "/table?vars=temp_air&format=parquet")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PAR1")))
}

func TestTable_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		kind   string
	}{
		{"unknown variable", "vars=temp_air,colour", http.StatusBadRequest, "unknown_field"},
		{"unknown metric", "metrics=comfort", http.StatusBadRequest, "unknown_field"},
		{"bad format", "format=xlsx", http.StatusBadRequest, "invalid_request"},
		{"bad hour", "hour_from=noon", http.StatusBadRequest, "invalid_request"},
		{"hour out of range", "hour_to=24", http.StatusBadRequest, "invalid_request"},
		{"bad date", "start=yesterday", http.StatusBadRequest, "invalid_request"},
		{"bad policy", "missing=skip", http.StatusBadRequest, "invalid_request"},
	}
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.get("/api/v1/files/" + id + "/table?" + tt.query)
			assert.Equal(t, tt.status, rec.Code)
			kind, _ := decodeError(t, rec)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestTable_MissingInput(t *testing.T) {
	env := newTestEnv(t, nil)
	lines := epwtest.Hourly(2)
	lines[1] = epwtest.WithColumn(lines[1], 21, "999")
	id := env.upload(t, epwtest.Text(lines...))

	rec := env.get("/api/v1/files/" + id + "/table?metrics=wind_chill")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "missing_input", kind)

	rec = env.get("/api/v1/files/" + id + "/table?vars=wind_speed&metrics=wind_chill&missing=blank")
	require.Equal(t, http.StatusOK, rec.Code)
	var body tableBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rows, 2)
	assert.Nil(t, body.Rows[1].Values[0])
	assert.Nil(t, body.Rows[1].Values[1])
}

func TestPivot(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(2))

	rec := env.get("/api/v1/files/" + id + "/pivot?var=temp_air&by=day")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Column     string       `json:"column"`
		Keys       []int        `json:"keys"`
		Cells      [][]*float64 `json:"cells"`
		Colorscale string       `json:"colorscale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "temp_air", body.Column)
	assert.Equal(t, []int{1, 2}, body.Keys)
	require.Len(t, body.Cells, 24)
	require.NotNil(t, body.Cells[7][1])
	assert.InDelta(t, 7.0, *body.Cells[7][1], 1e-9)
	assert.Equal(t, derive.Colorscale("temp_air"), body.Colorscale)
}

func TestPivot_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	for _, query := range []string{"", "var=temp_air&by=week", "var=temp_air&dst=maybe"} {
		rec := env.get("/api/v1/files/" + id + "/pivot?" + query)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestRange(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.get("/api/v1/files/" + id + "/range?var=temp_air")
	require.Equal(t, http.StatusOK, rec.Code)

	var rg derive.Range
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rg))
	assert.Equal(t, 0.0, rg.Min)
	assert.Equal(t, 23.0, rg.Max)
	assert.InDelta(t, -1.15, rg.Lower, 1e-9)
	assert.InDelta(t, 24.15, rg.Upper, 1e-9)
}

func TestRange_NoData(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	// Present weather observation is 9 (missing) on every fixture line.
	rec := env.get("/api/v1/files/" + id + "/range?var=present_weather_observation")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	kind, _ := decodeError(t, rec)
	assert.Equal(t, "no_data", kind)
}

func TestDaily(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(2))

	rec := env.get("/api/v1/files/" + id + "/daily?var=temp_air")
	require.Equal(t, http.StatusOK, rec.Code)

	var days []struct {
		Min  *float64 `json:"min"`
		Mean *float64 `json:"mean"`
		Max  *float64 `json:"max"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
	require.Len(t, days, 2)
	assert.InDelta(t, 0.0, *days[1].Min, 1e-9)
	assert.InDelta(t, 23.0, *days[1].Max, 1e-9)
	require.NotNil(t, days[1].Mean)
	assert.InDelta(t, 11.5, *days[1].Mean, 1e-9)
}

func TestPublish(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.upload(t, epwtest.Days(1))

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/files/"+id+"/publish?hour_from=0&hour_to=11", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 12, body["messages"])
	assert.Equal(t, 12, env.publisher.rows)
}

func TestPublish_Failure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.publisher.err = errors.New("broker unavailable")
	id := env.upload(t, epwtest.Days(1))

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/files/"+id+"/publish", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
