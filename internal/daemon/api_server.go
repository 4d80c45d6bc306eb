package daemon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"hemascan/internal/capture"
	"hemascan/internal/config"
	"hemascan/internal/logging"
	"hemascan/internal/pipeline"
	"hemascan/internal/records"
	"hemascan/internal/scan"
)

const maxScanRequestBytes = 50 << 20

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", requireScanToken(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/scans", requireScanToken(srv.token, srv.handleScans))
	mux.HandleFunc("/api/scans/", requireScanToken(srv.token, srv.handleScanByID))
	mux.HandleFunc("/api/corpus/stats", requireScanToken(srv.token, srv.handleCorpusStats))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, statusResponse{
		Running:       status.Running,
		PID:           status.PID,
		DatabasePath:  status.DatabasePath,
		LockFilePath:  status.LockFilePath,
		ProviderChain: status.ProviderChain,
	})
}

func (s *apiServer) handleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleScanSubmit(w, r)
	case http.MethodGet:
		s.handleScanList(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleScanSubmit(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		s.writeError(w, http.StatusUnauthorized, pipeline.ErrAuthenticationRequired.Error())
		return
	}
	if len(req.Images) == 0 || len(req.Images) > scan.SlotCount {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("between 1 and %d images required", scan.SlotCount))
		return
	}

	images := make([][]byte, 0, len(req.Images))
	for i, encoded := range req.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(data) == 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("image %d is not valid base64", i))
			return
		}
		images = append(images, data)
	}

	task := pipeline.NewTask(s.daemon.manager, s.daemon.orchestrator, ownerID, s.logger)
	session := capture.NewSession(task, s.logger)
	if err := session.SetSubject(req.Subject); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := session.SubmitBulk(r.Context(), images); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := session.Wait(r.Context())
	switch state.Phase {
	case capture.PhaseResult:
		s.writeJSON(w, http.StatusCreated, scanResponse{Record: recordPayloadFrom(*state.Record)})
	case capture.PhaseError:
		s.writeError(w, http.StatusBadGateway, state.Message)
	default:
		s.writeError(w, http.StatusGatewayTimeout, "analysis did not complete")
	}
}

func (s *apiServer) handleScanList(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))

	var (
		found     []scan.Record
		malformed []records.ParseError
		err       error
	)
	if owner != "" {
		found, malformed, err = s.daemon.store.List(r.Context(), owner)
	} else {
		found, malformed, err = s.daemon.store.ListAll(r.Context())
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := scanListResponse{Skipped: len(malformed)}
	for _, record := range found {
		payload.Records = append(payload.Records, recordPayloadFrom(record))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleScanByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/scans/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	record, err := s.daemon.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			s.writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, scanResponse{Record: recordPayloadFrom(*record)})
}

func (s *apiServer) handleCorpusStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.daemon.store.GetCorpusStats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := corpusStatsResponse{
		TotalEntries:  stats.TotalEntries,
		ConsentedOnly: stats.ConsentedOnly,
		MeanHb:        stats.MeanHb,
		StageCounts:   make(map[string]int64, len(stats.StageCounts)),
	}
	for stage, count := range stats.StageCounts {
		payload.StageCounts[string(stage)] = count
	}
	if !stats.OldestEntry.IsZero() {
		payload.OldestEntry = stats.OldestEntry.UnixMilli()
		payload.NewestEntry = stats.NewestEntry.UnixMilli()
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
