package api

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"risk-engine-go/backtest"
	"risk-engine-go/montecarlo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// 请求体上限
const maxBodyBytes = 1 << 20

// ErrorResponse 统一错误格式
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"encode response failed","code":500}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: status})
}

// decode 解析 JSON 请求体，空 body 视为格式错误。
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor 校验类错误映射为 400，其余为 500。
func statusFor(err error) int {
	switch {
	case errors.Is(err, montecarlo.ErrEmptyReturns),
		errors.Is(err, montecarlo.ErrNegativeIterations),
		errors.Is(err, backtest.ErrNoStrategies),
		errors.Is(err, backtest.ErrIterations):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
