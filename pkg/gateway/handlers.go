package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pixperk/handset/pkg/booking"
	"github.com/pixperk/handset/pkg/metrics"
	"github.com/pixperk/handset/pkg/notify"
	hstime "github.com/pixperk/handset/pkg/time"
)

const (
	maxBodyBytes        = 64 << 10
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type bookRequest struct {
	Mobile    string `json:"mobile"`
	Requester string `json:"requester"`
	Due       string `json:"due"`
}

type bookResponse struct {
	Mobile    string `json:"mobile"`
	Requester string `json:"requester"`
	Made      string `json:"made"`
	Due       string `json:"due"`
}

type returnRequest struct {
	Mobile    string `json:"mobile"`
	Requester string `json:"requester"`
}

type listItem struct {
	Mobile    string `json:"mobile"`
	Status    string `json:"status"`
	Requester string `json:"requester,omitempty"`
	Made      string `json:"made,omitempty"`
	Due       string `json:"due,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Leases  int    `json:"leases"`
	Mobiles int    `json:"mobiles"`
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	due, err := hstime.ParseLocal(req.Due)
	if err != nil {
		s.logger.WarnContext(r.Context(), "book rejected", "mobile", req.Mobile, "error", err)
		writeError(w, http.StatusBadRequest, "invalid_due", err.Error())
		return
	}

	lease, err := s.svc.Book(r.Context(), booking.BookRequest{
		Mobile:    req.Mobile,
		Requester: req.Requester,
		Due:       due,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, bookResponse{
		Mobile:    lease.Mobile,
		Requester: lease.Requester,
		Made:      hstime.FormatLocal(lease.Made),
		Due:       hstime.FormatLocal(lease.Due),
	})
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	lease, err := s.svc.Return(r.Context(), booking.ReturnRequest{
		Mobile:    req.Mobile,
		Requester: req.Requester,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, returnRequest{
		Mobile:    lease.Mobile,
		Requester: lease.Requester,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	views := s.svc.List(r.Context())

	items := make([]listItem, 0, len(views))
	for _, v := range views {
		item := listItem{Mobile: v.Mobile, Status: v.Status.String()}
		if v.Leased() {
			item.Requester = v.Requester
			item.Made = hstime.FormatLocal(v.Made)
			item.Due = hstime.FormatLocal(v.Due)
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(hstime.FormatLocal(s.svc.Now())))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.svc.Health()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Leases: h.Leases, Mobiles: h.Mobiles})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal_disabled", "event journal is not configured")
		return
	}

	var from uint64
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be a non-negative integer")
			return
		}
		from = parsed
	}

	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	entries, err := s.journal.History(from, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "history read failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "history read failed")
		return
	}
	if entries == nil {
		entries = []notify.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			metrics.RateLimitedTotal.WithLabelValues("http").Inc()
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next(w, r)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
