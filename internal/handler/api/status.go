package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"HashArb/internal/usecase/strategy"
	xhttp "HashArb/pkg/http"
	xlogger "HashArb/pkg/logger"
	"HashArb/pkg/util"
)

const (
	defaultRankingLimit = 20
	wsWriteTimeout      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StatusHandler serves the read-only strategy surface and the operator
// speed override.
type StatusHandler struct {
	logger *xlogger.Logger
	loop   *strategy.Loop
}

func NewStatusHandler(logger *xlogger.Logger, loop *strategy.Loop) *StatusHandler {
	return &StatusHandler{logger: logger, loop: loop}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/ws/events", h.Events)

	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/ranking", h.Ranking)
	g.GET("/trends", h.Trends)
	g.GET("/sources", h.Sources)
	g.POST("/speed", h.SetSpeed)
}

func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) Status(c echo.Context) error {
	status := h.loop.Status()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"cycle_count":    status.CycleCount,
		"last_cycle":     status.LastCycle,
		"balance":        status.Balance,
		"summary":        status.Summary,
		"top_coins":      status.TopCoins,
		"active_orders":  status.ActiveOrders,
		"recharge_count": status.RechargeCount,
		"sources":        h.loop.SourceHealth(),
	})
}

func (h *StatusHandler) Ranking(c echo.Context) error {
	limit := util.ParseIntDefault(c.QueryParam("limit"), defaultRankingLimit)
	if limit < 1 {
		limit = defaultRankingLimit
	}
	records := h.loop.Status().Records
	total := int64(len(records))
	if len(records) > limit {
		records = records[:limit]
	}
	return xhttp.ListResponse(c, records, total)
}

func (h *StatusHandler) Trends(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.loop.Status().Trends)
}

func (h *StatusHandler) Sources(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.loop.SourceHealth())
}

// SpeedLimitRequest is the operator override for one algorithm's limit.
type SpeedLimitRequest struct {
	Algorithm string  `json:"algorithm" validate:"required"`
	Limit     float64 `json:"limit" validate:"required,gt=0"`
	Reason    string  `json:"reason" default:"manual override"`
}

func (h *StatusHandler) SetSpeed(c echo.Context) error {
	req := &SpeedLimitRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.loop.HasAlgorithm(req.Algorithm) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("algorithm %s is not tracked", req.Algorithm))
	}

	applied := h.loop.SetSpeedLimit(req.Algorithm, req.Limit, req.Reason)
	h.logger.Info("speed limit override",
		xlogger.String("algorithm", req.Algorithm),
		xlogger.Float64("requested", req.Limit),
		xlogger.Float64("applied", applied),
	)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"algorithm": req.Algorithm,
		"applied":   applied,
	})
}

// Events streams strategy events over a websocket until the client leaves.
func (h *StatusHandler) Events(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, unsubscribe := h.loop.Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed", xlogger.Error(err))
				return nil
			}
		}
	}
}
