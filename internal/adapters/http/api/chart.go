package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/okian/challengeboard/internal/pipeline"
)

// SnapshotDependencies exposes the current session views.
type SnapshotDependencies interface {
	Snapshot(ctx context.Context) (pipeline.View, error)
}

// ChartHandler serves the bar chart as data and as an image.
type ChartHandler struct {
	deps     SnapshotDependencies
	renderer ChartRenderer
}

// NewChartHandler creates a chart handler. A nil renderer disables the image route.
func NewChartHandler(deps SnapshotDependencies, renderer ChartRenderer) *ChartHandler {
	return &ChartHandler{deps: deps, renderer: renderer}
}

// HandleGetChart handles GET /chart: one bar per entry in submission order.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Chart)
}

// HandleGetChartPNG handles GET /chart.png. An empty session has nothing to draw.
func (h *ChartHandler) HandleGetChartPNG(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart_png"
	if r.Method != http.MethodGet || h.renderer == nil {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if len(view.Chart) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view.Chart); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", h.renderer.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
