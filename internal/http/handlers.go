package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

// requestLogger prefers the request-scoped logger set by the trace middleware.
func (s *Server) requestLogger(ctx context.Context) *applog.Logger {
	if l, ok := ctx.Value(applog.LoggerContextKey).(*applog.Logger); ok && l != nil {
		return l
	}
	return s.logger
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.start).Round(time.Second).String(),
	}).Write(w)
}

// handleReady verifies the templates and the storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok", "storage": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}

	NewHTMXResponse().Status(httpStatus).BodyJSON(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.trace.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()

	var buf bytes.Buffer
	counter := func(name, help string, v interface{}) {
		fmt.Fprintf(&buf, "# HELP %s %s\n# TYPE %s counter\n%s %v\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v interface{}) {
		fmt.Fprintf(&buf, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_requests_failed_total", "HTTP requests answered with a 5xx status", traceMetrics.FailedRequests)
	gauge("http_response_time_avg_ms", "Average response time in milliseconds", traceMetrics.AverageResponseTime.Milliseconds())
	counter("transactions_recorded_total", "Transactions recorded through HTTP", s.metrics.transactions.Load())
	counter("overspending_alerts_total", "Overspending alerts reported to clients", s.metrics.alerts.Load())
	counter("exports_total", "Export downloads served", s.metrics.exports.Load())
	counter("rate_limit_rejected_total", "Requests rejected by the rate limiter", rateMetrics.Rejected)
	gauge("rate_limit_clients", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	if s.snapshotCache != nil {
		st := s.snapshotCache.Stats()
		counter("snapshot_cache_hits_total", "Dashboard snapshot cache hits", st.Hits)
		counter("snapshot_cache_misses_total", "Dashboard snapshot cache misses", st.Misses)
		gauge("snapshot_cache_entries", "Cached dashboard snapshots", st.Size)
	}
	gauge("uptime_seconds", "Application uptime in seconds", int64(time.Since(s.metrics.start).Seconds()))

	NewHTMXResponse().
		Header("Content-Type", "text/plain; charset=utf-8").
		Body(buf.Bytes()).
		Write(w)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.NewStructuredLogger(s.requestLogger(r.Context()).WithComponent(applog.ComponentTemplate)).
			LogError(r.Context(), "Template execution failed", err, applog.OpRender, nil)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}

	s.render(w, r, "index.html", indexPage{
		Today:      time.Now().Format(core.DateLayout),
		Categories: categorySuggestions(txs),
		Rows:       newTransactionRows(txs),
		Totals:     newTotalsView(snap.Totals),
		Alerts:     alertMessages(snap.Alerts),
	})
}

// handleTransactions lists on GET and records on POST.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	var buf bytes.Buffer
	if err := export.EncodeJSON(&buf, txs); err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	NewHTMXResponse().Header("Content-Type", "application/json").Body(buf.Bytes()).Write(w)
}

type createdResponse struct {
	Ref         string           `json:"ref"`
	Transaction core.Transaction `json:"transaction"`
	Totals      totalsJSON       `json:"totals"`
	Alerts      []alertJSON      `json:"alerts"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.requestLogger(ctx)

	p := NewRequestBodyParser(r)
	asJSON := p.LooksJSON() || wantsJSON(r)
	fail := func(status int, htmlMsg, jsonMsg string) {
		if asJSON {
			JSONErrorResponse(status, jsonMsg).Write(w)
			return
		}
		ErrorResponse(status, htmlMsg).TriggerErrorNotification(htmlMsg).Write(w)
	}

	if err := p.Parse(); err != nil {
		logger.WarnContext(ctx, "Malformed transaction body",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpParse)
		fail(http.StatusBadRequest, "Invalid request format", "malformed request body")
		return
	}

	tx, err := p.Transaction()
	if err == nil {
		var rec recordedView
		rec, err = s.record(ctx, tx)
		if err == nil {
			s.writeCreated(w, asJSON, rec)
			return
		}
	}

	if core.IsValidationError(err) {
		logger.InfoContext(ctx, "Transaction rejected",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpValidate)
		fail(http.StatusUnprocessableEntity, "Invalid data: "+err.Error(), err.Error())
		return
	}
	applog.NewStructuredLogger(logger).LogError(ctx, "Failed to save transaction", err, applog.OpCreate,
		applog.NewFields().WithTransaction(tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Cents))
	fail(http.StatusInternalServerError, "Error saving transaction", "could not save transaction")
}

type recordedView struct {
	createdResponse
	count    int
	messages []string
}

func (s *Server) record(ctx context.Context, tx core.Transaction) (recordedView, error) {
	rec, err := s.svc.Record(ctx, tx)
	if err != nil {
		return recordedView{}, err
	}
	s.metrics.transactions.Add(1)
	s.metrics.alerts.Add(int64(len(rec.Alerts)))
	return recordedView{
		createdResponse: createdResponse{
			Ref:         rec.Ref,
			Transaction: rec.Transaction,
			Totals:      newTotalsJSON(rec.Snapshot.Totals),
			Alerts:      newAlertsJSON(rec.Alerts),
		},
		count:    rec.Snapshot.Count,
		messages: alertMessages(rec.Alerts),
	}, nil
}

func (s *Server) writeCreated(w http.ResponseWriter, asJSON bool, rec recordedView) {
	if asJSON {
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(rec.createdResponse).Write(w)
		return
	}

	resp := NewHTMXResponse().
		TriggerTransactionCreated(rec.count).
		TriggerFormReset().
		BodyHTML(`<div class="success">Transaction recorded</div>`)
	if len(rec.messages) > 0 {
		resp.TriggerOverspending(rec.Alerts).
			TriggerWarningNotification(strings.Join(rec.messages, "\n"))
	} else {
		resp.TriggerSuccessNotification("Transaction recorded")
	}
	resp.Write(w)
}

func (s *Server) handleTablePartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "transactions_table.html", newTransactionRows(txs))
}

func (s *Server) handleTotalsPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "totals.html", newTotalsView(snap.Totals))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpList)
		return
	}
	NewHTMXResponse().
		Header("Cache-Control", "no-store").
		BodyJSON(newDashboardResponse(snap)).
		Write(w)
}

// handleExport downloads the whole collection, JSON unless ?format= says
// otherwise.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		s.storageError(w, r, err, applog.OpExport)
		return
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, format, txs); err != nil {
		applog.NewStructuredLogger(s.requestLogger(r.Context()).WithComponent(applog.ComponentExport)).
			LogError(r.Context(), "Export encoding failed", err, applog.OpExport, nil)
		InternalServerError("Export failed").Write(w)
		return
	}
	s.metrics.exports.Add(1)
	s.requestLogger(r.Context()).InfoContext(r.Context(), "Export served",
		applog.FieldOperation, applog.OpExport,
		applog.FieldFormat, string(format),
		applog.FieldCount, len(txs))

	NewHTMXResponse().
		Header("Content-Type", format.ContentType()).
		Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename())).
		Body(buf.Bytes()).
		Write(w)
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request, err error, op string) {
	applog.NewStructuredLogger(s.requestLogger(r.Context()).WithComponent(applog.ComponentStorage)).
		LogError(r.Context(), "Storage read failed", err, op, nil)
	status := http.StatusInternalServerError
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	if wantsJSON(r) || strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/transactions" {
		JSONErrorResponse(status, "storage unavailable").Write(w)
		return
	}
	ErrorResponse(status, "Storage unavailable").Write(w)
}
