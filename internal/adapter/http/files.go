package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/export"
	"github.com/couchcryptid/epw-viewer/internal/store"
)

// uploadField is the multipart form field carrying the EPW file.
const uploadField = "file"

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, derive.Catalog())
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	entries := s.api.Files.List()
	out := make([]store.Summary, len(entries))
	for i, e := range entries {
		out[i] = e.Summary()
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpload accepts the file as the raw request body or as the "file"
// part of a multipart form.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.api.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.api.MaxUploadBytes)
	}

	body, err := uploadBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.api.Files.Load(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/files/"+e.ID)
	writeJSON(w, http.StatusCreated, e.Summary())
}

func uploadBody(r *http.Request) (io.Reader, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", derive.ErrInvalidRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: multipart form has no %q field", derive.ErrInvalidRequest, uploadField)
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", derive.ErrInvalidRequest, err)
		}
		if part.FormName() == uploadField {
			return part, nil
		}
	}
}

func (s *Server) entry(r *http.Request) (*store.Entry, error) {
	id := r.PathValue("id")
	e, ok := s.api.Files.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errFileNotFound, id)
	}
	return e, nil
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	e, err := s.entry(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e.Summary())
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.api.Files.Remove(id) {
		s.writeError(w, r, fmt.Errorf("%w: %s", errFileNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildTable resolves the file and builds the table a view reads. A
// non-empty column narrows the request to that column.
func (s *Server) buildTable(r *http.Request, view, column string) (*store.Entry, *derive.Table, error) {
	e, err := s.entry(r)
	if err != nil {
		return nil, nil, err
	}
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		return nil, nil, err
	}
	if column != "" {
		req = req.ForColumn(column)
	}

	start := time.Now()
	table, err := derive.Build(e.File.Records, req)
	s.api.Metrics.TableDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, err
	}
	s.api.Metrics.TableRows.Observe(float64(len(table.Rows)))
	return e, table, nil
}

// serveView runs a view handler body and records its outcome.
func (s *Server) serveView(w http.ResponseWriter, r *http.Request, view string, fn func() error) {
	if err := fn(); err != nil {
		s.api.Metrics.TableRequests.WithLabelValues(view, "error").Inc()
		s.writeError(w, r, err)
		return
	}
	s.api.Metrics.TableRequests.WithLabelValues(view, "success").Inc()
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "table", func() error {
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			return fmt.Errorf("%w: %v", derive.ErrInvalidRequest, err)
		}
		e, table, err := s.buildTable(r, "table", "")
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", format.ContentType())
		if format != export.FormatJSON {
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%q", e.File.Location.StationID()+"."+format.Extension()))
		}
		if err := export.Write(w, format, e.File.Location, table); err != nil {
			// Headers are sent; the client sees a truncated body.
			s.logger.Error("table export failed", "id", e.ID, "format", format, "error", err)
		}
		return nil
	})
}

func (s *Server) handlePivot(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "pivot", func() error {
		q := r.URL.Query()
		column, err := requiredColumn(q)
		if err != nil {
			return err
		}
		dst, err := parseBool(q, "dst")
		if err != nil {
			return err
		}
		by := derive.PivotBy(q.Get("by"))
		if by == "" {
			by = derive.ByMonth
		}

		_, table, err := s.buildTable(r, "pivot", column)
		if err != nil {
			return err
		}
		p, err := derive.PivotMean(table, column, by, dst)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, struct {
			*derive.Pivot
			Colorscale string `json:"colorscale"`
		}{p, derive.Colorscale(column)})
		return nil
	})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "range", func() error {
		column, err := requiredColumn(r.URL.Query())
		if err != nil {
			return err
		}
		_, table, err := s.buildTable(r, "range", column)
		if err != nil {
			return err
		}
		rg, err := derive.ValueRange(table, column)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, rg)
		return nil
	})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "daily", func() error {
		column, err := requiredColumn(r.URL.Query())
		if err != nil {
			return err
		}
		_, table, err := s.buildTable(r, "daily", column)
		if err != nil {
			return err
		}
		days, err := derive.DailyExtremes(table, column)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, days)
		return nil
	})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "publish", func() error {
		e, table, err := s.buildTable(r, "publish", "")
		if err != nil {
			return err
		}
		n, err := s.api.Publisher.Publish(r.Context(), e.File.Location, table)
		if err != nil {
			return fmt.Errorf("publish %s: %w", e.ID, err)
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"messages": n})
		return nil
	})
}
