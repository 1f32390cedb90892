package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/jasonmurdy-collab/MarketPulse/internal/errors"
	"github.com/jasonmurdy-collab/MarketPulse/internal/exporter"
	"github.com/jasonmurdy-collab/MarketPulse/internal/services"
	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// Ingestion starts background ingestion cycles
type Ingestion interface {
	Start(ctx context.Context) error
	Running() bool
	LastReport() (domain.RunReport, bool)
}

// MarketHandler serves market data, exports and refresh requests
type MarketHandler struct {
	market       *services.MarketService
	ingestion    Ingestion
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(market *services.MarketService, ingestion Ingestion, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MarketHandler {
	return &MarketHandler{
		market:       market,
		ingestion:    ingestion,
		logger:       logger.With(slog.String("component", "market_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the market routes
func (h *MarketHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/status", h.GetStatus)
		r.Get("/regions", h.GetRegions)
		r.Get("/weekly", h.GetWeekly)
		r.Get("/monthly", h.GetMonthly)
		r.Get("/latest", h.GetLatest)
		r.Get("/regions/{region}/summary", h.GetRegionSummary)
		r.Get("/report", h.GetLastReport)
		r.Post("/refresh", h.Refresh)
	})

	r.Get("/export.csv", h.ExportCSV)
	r.Get("/export.xlsx", h.ExportXLSX)

	return r
}

// GetStatus handles GET /api/market/status
func (h *MarketHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.market.Status(r.Context()))
}

// GetRegions handles GET /api/market/regions
func (h *MarketHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions := h.market.Regions(r.Context())
	renderList(w, r, regions, len(regions))
}

// GetWeekly handles GET /api/market/weekly
func (h *MarketHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	q, err := parseMarketQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	records, err := h.market.Weekly(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	renderList(w, r, records, len(records))
}

// GetMonthly handles GET /api/market/monthly
func (h *MarketHandler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	q, err := parseMarketQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	records, err := h.market.Monthly(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	renderList(w, r, records, len(records))
}

// GetLatest handles GET /api/market/latest
func (h *MarketHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	g, err := parseGranularity(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if g == domain.GranularityMonthly {
		records := h.market.LatestMonthly(r.Context())
		renderList(w, r, records, len(records))
		return
	}
	records := h.market.LatestWeekly(r.Context())
	renderList(w, r, records, len(records))
}

// GetRegionSummary handles GET /api/market/regions/{region}/summary
func (h *MarketHandler) GetRegionSummary(w http.ResponseWriter, r *http.Request) {
	region, err := domain.ParseRegion(chi.URLParam(r, "region"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidParameter("region", err))
		return
	}
	g, err := parseGranularity(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.market.RegionSummary(r.Context(), region, g)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetLastReport handles GET /api/market/report
func (h *MarketHandler) GetLastReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.ingestion.LastReport()
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("Ingestion report"))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"data":    report,
		"running": h.ingestion.Running(),
	})
}

// Refresh handles POST /api/market/refresh. The cycle outlives the request.
func (h *MarketHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ingestion.Start(context.WithoutCancel(r.Context())); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "ingestion refresh requested")

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status": "accepted",
		"data":   h.market.Status(r.Context()),
	})
}

// ExportCSV handles GET /api/market/export.csv
func (h *MarketHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	g, err := parseGranularity(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	opts, err := parseExportOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	opts.BOMPrefix = opts.Display

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "marketpulse-"+string(g)+".csv"))
	if err := exporter.WriteCSV(w, g, h.market.Snapshot(r.Context()), opts); err != nil {
		// Headers are already sent; the client sees a truncated file.
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("granularity", string(g)),
			slog.String("error", err.Error()))
	}
}

// ExportXLSX handles GET /api/market/export.xlsx
func (h *MarketHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	opts, err := parseExportOptions(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="marketpulse.xlsx"`)
	if err := exporter.WriteWorkbook(w, h.market.Snapshot(r.Context()), opts); err != nil {
		h.logger.ErrorContext(r.Context(), "xlsx export failed", slog.String("error", err.Error()))
	}
}

// handleServiceError maps service sentinels onto API errors
func (h *MarketHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidRegion):
		err = apierrors.InvalidParameter("region", err)
	case errors.Is(err, services.ErrInvalidGranularity):
		err = apierrors.InvalidParameter("granularity", err)
	case errors.Is(err, services.ErrNoMarketData):
		err = apierrors.NoMarketData(err)
	case errors.Is(err, services.ErrIngestionRunning):
		err = apierrors.ErrIngestionRunning
	}
	h.errorHandler.HandleError(w, r, err)
}

func renderList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

func parseMarketQuery(r *http.Request) (services.MarketQuery, error) {
	var q services.MarketQuery
	if raw := r.URL.Query().Get("region"); raw != "" {
		region, err := domain.ParseRegion(raw)
		if err != nil {
			return q, apierrors.InvalidParameter("region", err)
		}
		q.Region = region
	}
	recent, err := parseBool(r, "recent")
	if err != nil {
		return q, err
	}
	q.Recent = recent
	return q, nil
}

// parseGranularity defaults to weekly when the parameter is absent
func parseGranularity(r *http.Request) (domain.Granularity, error) {
	raw := r.URL.Query().Get("granularity")
	if raw == "" {
		return domain.GranularityWeekly, nil
	}
	g, err := domain.ParseGranularity(raw)
	if err != nil {
		return "", apierrors.InvalidParameter("granularity", err)
	}
	return g, nil
}

func parseExportOptions(r *http.Request) (exporter.Options, error) {
	display, err := parseBool(r, "display")
	if err != nil {
		return exporter.Options{}, err
	}
	return exporter.Options{Display: display}, nil
}

func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierrors.InvalidParameter(name, err)
	}
	return v, nil
}
