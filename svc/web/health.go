package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"inkwell/svc/util"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready    bool   `json:"ready"`
	Degraded bool   `json:"degraded"`
	Storage  string `json:"storage"`
	Sessions string `json:"sessions"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	resp := ReadyResponse{
		Ready:    true,
		Degraded: false,
		Storage:  "up",
		Sessions: "up",
	}
	if _, err := s.docs.List(ctx); err != nil {
		util.Error().Err(err).Msg("storage health check failed")
		resp.Storage = "down"
		resp.Ready = false
	}
	if s.rdb != nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer pingCancel()
		if err := s.rdb.Ping(pingCtx); err != nil {
			util.Error().Err(err).Msg("session backend health check failed")
			resp.Sessions = "down"
			resp.Degraded = true
		}
	} else {
		resp.Sessions = "memory"
	}
	w.Header().Set("Content-Type", "application/json")
	if !resp.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(resp)
}
