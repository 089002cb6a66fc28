package api

import (
	"sort"
	"time"

	models "SigPulse/internal/domain/models"
	"SigPulse/internal/usecase"
	xhttp "SigPulse/pkg/http"
	xlogger "SigPulse/pkg/logger"
	xutil "SigPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// DecisionsHandler serves the latest decision state over HTTP.
type DecisionsHandler struct {
	logger  *xlogger.Logger
	store   *usecase.LatestStore
	tickers *usecase.TickerCollector
}

func NewDecisionsHandler(logger *xlogger.Logger, store *usecase.LatestStore, tickers *usecase.TickerCollector) *DecisionsHandler {
	return &DecisionsHandler{logger: logger, store: store, tickers: tickers}
}

func (h *DecisionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/decision", h.Decision)
	g.GET("/decisions", h.Decisions)
	g.GET("/health", h.Health)
}

// Decision returns the latest decision for one pair and timeframe.
func (h *DecisionsHandler) Decision(c echo.Context) error {
	req := &models.DecisionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	d := h.store.Get(req.Pair, req.TF)
	if d == nil {
		return xhttp.AppErrorResponse(c,
			xhttp.NotFoundErrorf("no decision yet for %s %s", req.Pair, req.TF))
	}
	return xhttp.SuccessResponse(c, d)
}

// Decisions returns the latest decision for every evaluated timeframe.
// Optional query params: tf narrows to one timeframe, since (RFC3339
// or unix seconds) drops older decisions, limit caps the result.
func (h *DecisionsHandler) Decisions(c echo.Context) error {
	tf := c.QueryParam("tf")
	since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{})
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0)

	if tf != "" && !since.IsZero() {
		// Snap the cutoff to the bar boundary the decisions fall on.
		since, _ = xutil.AlignFromTo(since, time.Now(), tf)
	}

	all := h.store.All()
	out := make([]*models.Decision, 0, len(all))
	for _, d := range all {
		if tf != "" && d.Timeframe != tf {
			continue
		}
		if !since.IsZero() && d.Timestamp.Before(since) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pair != out[j].Pair {
			return out[i].Pair < out[j].Pair
		}
		return out[i].Timeframe < out[j].Timeframe
	})
	total := int64(len(out))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return xhttp.ListResponse(c, out, total)
}

type healthStatus struct {
	Status          string `json:"status"`
	StreamConnected bool   `json:"stream_connected"`
	Decisions       int    `json:"decisions"`
}

// Health reports liveness plus stream connectivity.
func (h *DecisionsHandler) Health(c echo.Context) error {
	st := healthStatus{Status: "ok", Decisions: len(h.store.All())}
	if h.tickers != nil {
		st.StreamConnected = h.tickers.IsConnected()
	}
	return xhttp.SuccessResponse(c, st)
}
