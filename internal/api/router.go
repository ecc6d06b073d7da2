// Package api 风控服务 HTTP 接口。
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Dependencies 路由依赖
type Dependencies struct {
	Service   Service
	Stream    http.HandlerFunc // /ws/risk，为空时不注册
	Logger    *zap.Logger
	OnRequest func(route, code string) // 请求计数回调
}

// NewRouter 注册全部路由并套上恢复、请求 ID 与访问日志中间件。
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{svc: deps.Service}

	router := mux.NewRouter()
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)

	riskRoutes := router.PathPrefix("/risk").Subrouter()
	riskRoutes.HandleFunc("/evaluate", h.evaluate).Methods(http.MethodPost)
	riskRoutes.HandleFunc("/validate", h.validate).Methods(http.MethodPost)
	riskRoutes.HandleFunc("/stress", h.stress).Methods(http.MethodPost)
	riskRoutes.HandleFunc("/state", h.state).Methods(http.MethodGet)
	riskRoutes.HandleFunc("/mc_var", h.monteCarlo).Methods(http.MethodPost)

	router.HandleFunc("/backtest/run", h.backtest).Methods(http.MethodPost)

	if deps.Stream != nil {
		router.HandleFunc("/ws/risk", deps.Stream).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	var out http.Handler = router
	out = withLogging(router, log, deps.OnRequest)(out)
	out = withRecovery(log)(out)
	out = withRequestID(out)
	return out
}
