package api

import (
	"context"
	"net/http"

	"risk-engine-go/backtest"
	"risk-engine-go/internal/service"
	"risk-engine-go/montecarlo"
	"risk-engine-go/risk"
)

// Service 路由依赖的风控服务能力。
type Service interface {
	Evaluate(service.EvaluateRequest) service.EvaluateResponse
	ValidateTrade(service.ValidateRequest) service.ValidateResponse
	StressTest(service.StressRequest) service.StressResponse
	State() risk.State
	MonteCarloVaR(montecarlo.Request) (service.MonteCarloResponse, error)
	RunBacktest(context.Context, backtest.Request) (service.BacktestResponse, error)
	Health() service.HealthResponse
}

type handler struct {
	svc Service
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func (h *handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var req service.EvaluateRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Evaluate(req))
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	var req service.ValidateRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ValidateTrade(req))
}

func (h *handler) stress(w http.ResponseWriter, r *http.Request) {
	var req service.StressRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.StressTest(req))
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

func (h *handler) monteCarlo(w http.ResponseWriter, r *http.Request) {
	var req montecarlo.Request
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.MonteCarloVaR(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) backtest(w http.ResponseWriter, r *http.Request) {
	var req backtest.Request
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.RunBacktest(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
