// Package server exposes the engine over NATS request/reply. Each subject
// carries one JSON request shape; replies always use the Response envelope.
// The operations subject multiplexes every mutation behind an operation code,
// decoded here into the closed operation type before anything executes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/workplan/batch"
	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/natsclient"
	"github.com/c360/workplan/report"
	"github.com/c360/workplan/resource"
)

// Default subjects.
const (
	DefaultOperationsSubject = "workplan.operations"
	DefaultAnalysisSubject   = "workplan.reports.analysis"
	DefaultReportSubject     = "workplan.reports.generate"
	DefaultClientsSubject    = "workplan.clients.get"
	DefaultWorkloadsSubject  = "workplan.workloads.get"
)

const defaultRequestTimeout = 10 * time.Second

// Config holds the subjects the server listens on and the per-request
// timeout.
type Config struct {
	OperationsSubject string
	AnalysisSubject   string
	ReportSubject     string
	ClientsSubject    string
	WorkloadsSubject  string
	RequestTimeout    time.Duration
}

// DefaultConfig returns the standard subjects and timeout.
func DefaultConfig() Config {
	return Config{
		OperationsSubject: DefaultOperationsSubject,
		AnalysisSubject:   DefaultAnalysisSubject,
		ReportSubject:     DefaultReportSubject,
		ClientsSubject:    DefaultClientsSubject,
		WorkloadsSubject:  DefaultWorkloadsSubject,
		RequestTimeout:    defaultRequestTimeout,
	}
}

// Server answers requests on the configured subjects.
type Server struct {
	nc         *natsclient.Client
	operations *batch.Orchestrator
	reports    *report.Service
	config     Config
	logger     *slog.Logger
	now        func() time.Time

	subs []*nats.Subscription
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock replaces the time source used for the default report year.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server. Zero-value config fields fall back to the defaults.
func New(nc *natsclient.Client, operations *batch.Orchestrator, reports *report.Service, cfg Config, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.OperationsSubject == "" {
		cfg.OperationsSubject = def.OperationsSubject
	}
	if cfg.AnalysisSubject == "" {
		cfg.AnalysisSubject = def.AnalysisSubject
	}
	if cfg.ReportSubject == "" {
		cfg.ReportSubject = def.ReportSubject
	}
	if cfg.ClientsSubject == "" {
		cfg.ClientsSubject = def.ClientsSubject
	}
	if cfg.WorkloadsSubject == "" {
		cfg.WorkloadsSubject = def.WorkloadsSubject
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}

	s := &Server{
		nc:         nc,
		operations: operations,
		reports:    reports,
		config:     cfg,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to every configured subject.
func (s *Server) Start() error {
	handlers := []struct {
		subject string
		handle  func(context.Context, []byte) Response
	}{
		{s.config.OperationsSubject, s.HandleOperation},
		{s.config.AnalysisSubject, s.HandleAnalysis},
		{s.config.ReportSubject, s.HandleReport},
		{s.config.ClientsSubject, s.HandleClients},
		{s.config.WorkloadsSubject, s.HandleWorkloads},
	}

	for _, h := range handlers {
		if err := s.subscribe(h.subject, h.handle); err != nil {
			if stopErr := s.Stop(); stopErr != nil {
				s.logger.Error("cleanup after failed start", "error", stopErr)
			}
			return err
		}
	}

	s.logger.Info("server started", "operations", s.config.OperationsSubject)
	return nil
}

// Stop drops every subscription.
func (s *Server) Stop() error {
	for _, sub := range s.subs {
		if err := sub.Unsubscribe(); err != nil {
			return fmt.Errorf("unsubscribe %s: %w", sub.Subject, err)
		}
	}
	s.subs = nil
	return nil
}

func (s *Server) subscribe(subject string, handle func(context.Context, []byte) Response) error {
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.RequestTimeout)
		defer cancel()
		s.respond(msg, handle(ctx, msg.Data))
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Server) respond(msg *nats.Msg, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", "subject", msg.Subject, "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error("send response", "subject", msg.Subject, "error", err)
	}
}

// HandleOperation processes one request from the operations subject.
func (s *Server) HandleOperation(ctx context.Context, data []byte) Response {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errorResponse(400, "Validación fallida", []string{"payload: debe ser un JSON válido"})
	}

	op, violations := DecodeOperation(env)
	if len(violations) > 0 {
		s.logger.Warn("envelope rejected", "operation", env.Operation, "violations", violations)
		return errorResponse(400, "Validación fallida", violations)
	}

	result, err := s.operations.Execute(ctx, op)
	if err != nil {
		s.logger.Error("operation failed", "operation", env.Operation, "error", err)
		return errorResponse(500, "Error interno del servidor", []string{err.Error()})
	}

	s.logger.Info("operation executed",
		"operation", env.Operation,
		"outcome", result.Outcome,
		"succeeded", result.Succeeded,
		"failed", result.Failed)
	return operationResponse(op, result)
}

type analysisRequest struct {
	ClientID string `json:"id_cliente"`
}

// HandleAnalysis answers a per-year, per-month breakdown request.
func (s *Server) HandleAnalysis(ctx context.Context, data []byte) Response {
	var req analysisRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return errorResponse(400, "Validación fallida", []string{"payload: debe ser un JSON válido"})
		}
	}
	if req.ClientID == "" {
		return errorResponse(400, "Parámetro requerido", []string{"El id del cliente es obligatorio"})
	}

	analysis, err := s.reports.Analyze(ctx, req.ClientID)
	if err != nil {
		return s.failure("analysis", err)
	}
	return successResponse(200, "Análisis completado exitosamente", analysis)
}

type reportRequest struct {
	ClientID string `json:"id_cliente"`
	Year     string `json:"año"`
	Month    string `json:"mes"`
	Scope    string `json:"tipoReporte"`
}

// HandleReport answers a periodic report request.
func (s *Server) HandleReport(ctx context.Context, data []byte) Response {
	var req reportRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return errorResponse(400, "Validación fallida", []string{"payload: debe ser un JSON válido"})
		}
	}
	if req.Scope == "" {
		req.Scope = string(report.ScopeAnnual)
	}

	switch {
	case req.ClientID == "":
		return errorResponse(400, "Parámetro requerido", []string{"El parámetro id_cliente es obligatorio"})
	case req.Year == "":
		return errorResponse(400, "Parámetro requerido", []string{"El parámetro año es obligatorio"})
	case req.Scope != string(report.ScopeAnnual) && req.Scope != string(report.ScopeMonthly):
		return errorResponse(400, "Parámetro inválido", []string{`tipoReporte debe ser "anual" o "mensual"`})
	case req.Scope == string(report.ScopeMonthly) && req.Month == "":
		return errorResponse(400, "Parámetro requerido", []string{"El parámetro mes es obligatorio para reportes mensuales"})
	}

	rep, err := s.reports.Generate(ctx, req.ClientID, req.Year, req.Month, report.Scope(req.Scope))
	if err != nil {
		return s.failure("report", err)
	}
	return successResponse(200, "Reporte generado exitosamente", rep)
}

type clientsRequest struct {
	ID string `json:"id"`
}

type clientList struct {
	Clients []report.ClientInfo `json:"clientes"`
}

// HandleClients lists every client, or projects a single one when the
// request carries an id.
func (s *Server) HandleClients(ctx context.Context, data []byte) Response {
	var req clientsRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return errorResponse(400, "Validación fallida", []string{"payload: debe ser un JSON válido"})
		}
	}

	if req.ID != "" {
		c, err := s.reports.GetClient(ctx, req.ID)
		if err != nil {
			return s.failure("get client", err)
		}
		return successResponse(200, "Operación exitosa", clientList{Clients: []report.ClientInfo{{
			AccountID:   c.AccountID,
			Name:        c.Name,
			ProjectType: c.ProjectType,
			Commitment:  c.Commitment,
		}}})
	}

	clients, err := s.reports.ListClients(ctx)
	if err != nil {
		return s.failure("list clients", err)
	}
	return successResponse(200, "Operación exitosa", clientList{Clients: clients})
}

type workloadsRequest struct {
	ClientID   string `json:"id_cliente"`
	Year       string `json:"year"`
	WorkloadID string `json:"workloadId"`
}

type workloadList struct {
	Workloads      []resource.Workload `json:"workloads"`
	AvailableYears []string            `json:"availableYears"`
	Year           string              `json:"year,omitempty"`
	Total          int                 `json:"total"`
	Message        string              `json:"message,omitempty"`
}

type workloadDetail struct {
	Workload resource.Workload `json:"workload"`
	Year     string            `json:"year"`
}

// HandleWorkloads lists a client's workloads for a year, or locates a
// single workload by id when the request names one. The year defaults to
// the current one.
func (s *Server) HandleWorkloads(ctx context.Context, data []byte) Response {
	var req workloadsRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return errorResponse(400, "Validación fallida", []string{"payload: debe ser un JSON válido"})
		}
	}
	if req.ClientID == "" {
		return errorResponse(400, "ID de cliente requerido", nil)
	}
	if req.Year == "" {
		req.Year = strconv.Itoa(s.now().Year())
	}

	if req.WorkloadID != "" {
		w, err := s.reports.FindWorkload(ctx, req.ClientID, req.Year, req.WorkloadID)
		if err != nil {
			return s.failure("find workload", err)
		}
		return successResponse(200, "Operación exitosa", workloadDetail{
			Workload: w,
			Year:     resource.NormalizeYear(req.Year),
		})
	}

	years, err := s.reports.AvailableYears(ctx, req.ClientID)
	if err != nil {
		return s.failure("list years", err)
	}
	if len(years) == 0 {
		return successResponse(200, "Operación exitosa", workloadList{
			Workloads:      []resource.Workload{},
			AvailableYears: []string{},
			Message:        fmt.Sprintf("El cliente %s no tiene cargas de trabajo registradas.", req.ClientID),
		})
	}

	workloads, err := s.reports.WorkloadsForYear(ctx, req.ClientID, req.Year)
	if err != nil {
		return s.failure("list workloads", err)
	}
	return successResponse(200, "Operación exitosa", workloadList{
		Workloads:      workloads,
		AvailableYears: years,
		Year:           resource.NormalizeYear(req.Year),
		Total:          len(workloads),
	})
}

// failure maps a read-path error to a reply, keeping the root-cause message
// as the user-facing detail.
func (s *Server) failure(op string, err error) Response {
	detail := errors.Detail(err)
	if detail == "" {
		detail = err.Error()
	}
	if errors.IsNotFound(err) {
		return errorResponse(404, "No encontrado", []string{detail})
	}
	s.logger.Error("request failed", "op", op, "error", err)
	return errorResponse(500, "Error interno del servidor", []string{detail})
}
