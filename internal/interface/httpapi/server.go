package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	syncapp "github.com/fmops/sheetsync/internal/module/sync/application"
	syncdomain "github.com/fmops/sheetsync/internal/module/sync/domain"
	workorderapp "github.com/fmops/sheetsync/internal/module/workorder/application"
	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspaceapp "github.com/fmops/sheetsync/internal/module/workspace/application"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// Server は同期サブシステムの運用APIを公開するHTTPサーバです
type Server struct {
	jobs       *syncapp.JobService
	processor  *syncapp.Processor
	workspaces *workspaceapp.WorkspaceService
	router     *workorderapp.ReadRouter
	sampler    *workorderapp.Sampler
	apiToken   string
	log        *slog.Logger

	mux *http.ServeMux
}

// NewServer は新しいServerを作成します。
// apiToken が空の場合、認証は無効になります（ローカル開発用）。
func NewServer(
	jobs *syncapp.JobService,
	processor *syncapp.Processor,
	workspaces *workspaceapp.WorkspaceService,
	router *workorderapp.ReadRouter,
	sampler *workorderapp.Sampler,
	apiToken string,
	log *slog.Logger,
) *Server {
	s := &Server{
		jobs:       jobs,
		processor:  processor,
		workspaces: workspaces,
		router:     router,
		sampler:    sampler,
		apiToken:   apiToken,
		log:        log,
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/sync/process", s.handleProcess)
	s.mux.HandleFunc("POST /api/sync/jobs", s.handleEnqueue)
	s.mux.HandleFunc("GET /api/sync/jobs", s.handleListJobs)
	s.mux.HandleFunc("GET /api/sync/jobs/{id}", s.handleGetJob)
	s.mux.HandleFunc("POST /api/sync/jobs/{id}/retry", s.handleRetryJob)
	s.mux.HandleFunc("GET /api/workspaces/{id}/read-source", s.handleGetReadSource)
	s.mux.HandleFunc("PUT /api/workspaces/{id}/read-source", s.handleSetReadSource)
	s.mux.HandleFunc("GET /api/workspaces/{id}/reconcile", s.handleReconcile)
	s.mux.HandleFunc("GET /api/workspaces/{id}/work-orders", s.handleListWorkOrders)
	s.mux.HandleFunc("GET /api/workspaces/{id}/work-orders/{number}", s.handleGetWorkOrder)
}

// ServeHTTP はhttp.Handlerの実装です（認証ミドルウェアを含む）
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.apiToken != "" {
		if r.Header.Get("Authorization") != "Bearer "+s.apiToken {
			writeError(w, http.StatusUnauthorized, "invalid or missing API token")
			return
		}
	}
	s.mux.ServeHTTP(w, r)
}

// handleProcess はバッチ処理を1パス実行します。
// 冪等かつ並行呼び出しに安全です（条件付きクレームによる）。
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkspaceID uuid.UUID `json:"workspaceId"`
		Limit       int       `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary, err := s.processor.ProcessPending(r.Context(), req.WorkspaceID, req.Limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkspaceID uuid.UUID `json:"workspaceId"`
		JobType     string    `json:"jobType"`
		EntityID    uuid.UUID `json:"entityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobType, err := syncdomain.ParseJobType(req.JobType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.jobs.Enqueue(r.Context(), req.WorkspaceID, jobType, req.EntityID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.URL.Query().Get("workspaceId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspaceId")
		return
	}

	filter := syncdomain.JobFilter{
		Cursor: r.URL.Query().Get("cursor"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := syncdomain.ParseJobStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	page, err := s.jobs.ListJobs(r.Context(), workspaceID, filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := s.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleRetryJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := s.jobs.RetryJob(r.Context(), jobID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetReadSource(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	workspace, err := s.workspaces.Get(r.Context(), workspaceID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"primaryReadSource": workspace.PrimaryReadSource,
		"strictReadSource":  workspace.StrictReadSource,
	})
}

func (s *Server) handleSetReadSource(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	var req struct {
		PrimaryReadSource string `json:"primaryReadSource"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := workspacedomain.ParseReadSource(req.PrimaryReadSource)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.workspaces.SetReadSource(r.Context(), workspaceID, source); err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"primaryReadSource": source})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	sampleSize := 0
	if v := r.URL.Query().Get("sample"); v != "" {
		sampleSize, err = strconv.Atoi(v)
		if err != nil || sampleSize < 1 {
			writeError(w, http.StatusBadRequest, "invalid sample size")
			return
		}
	}

	report, err := s.sampler.CompareSample(r.Context(), workspaceID, sampleSize)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListWorkOrders(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}

	result, err := s.router.ListWorkOrders(r.Context(), workspaceID, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetWorkOrder(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	key := workorderdomain.NaturalKey{
		OrderNumber: r.PathValue("number"),
		IssuerKey:   r.URL.Query().Get("issuer"),
	}
	if key.OrderNumber == "" || key.IssuerKey == "" {
		writeError(w, http.StatusBadRequest, "order number and issuer are required")
		return
	}

	result, err := s.router.GetWorkOrder(r.Context(), workspaceID, key)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeDomainError はドメインエラーをHTTPステータスへ対応付けます
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var routingErr *workorderdomain.RoutingError

	switch {
	case errors.Is(err, syncdomain.ErrJobNotFound),
		errors.Is(err, workspacedomain.ErrWorkspaceNotFound),
		errors.Is(err, workorderdomain.ErrWorkOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, syncdomain.ErrJobNotRetryable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &routingErr):
		// ストリクトモードは意図的な失敗（502）、両系障害は完全停止（503）
		status := http.StatusBadGateway
		if routingErr.Failure == workorderdomain.FailureBothSources {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
	default:
		s.log.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
