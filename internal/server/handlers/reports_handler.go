package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/export"
	"github.com/mamadbah2/gelateria/internal/service/ledger"
	"github.com/mamadbah2/gelateria/internal/service/reporting"
)

const (
	defaultTopN    = 5
	maxImportBytes = 32 << 20
)

// Advisor produces the prose stock summary.
type Advisor interface {
	Summarize(ctx context.Context, buckets []models.Bucket, flavors []models.Flavor) string
}

// ReportsHandler serves derived views, backups and insights.
type ReportsHandler struct {
	ledger    *ledger.Ledger
	reporting *reporting.Service
	advisor   Advisor
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewReportsHandler constructs the HTTP handler adapter.
func NewReportsHandler(l *ledger.Ledger, reportingSvc *reporting.Service, advisor Advisor, loc *time.Location, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{ledger: l, reporting: reportingSvc, advisor: advisor, location: loc, now: time.Now, logger: logger}
}

func (h *ReportsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporting.Dashboard())
}

func (h *ReportsHandler) Matrix(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporting.Matrix())
}

// Production sums production per flavor over ?from=&to=.
func (h *ReportsHandler) Production(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.reporting.Production(from, to))
}

// Top ranks flavors by produced weight; ?n= defaults to 5.
func (h *ReportsHandler) Top(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	n := defaultTopN
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = parsed
	}
	c.JSON(http.StatusOK, h.reporting.Top(from, to, n))
}

// Closings lists closing history, optionally filtered by ?store=.
func (h *ReportsHandler) Closings(c *gin.Context) {
	from, to, ok := h.rangeParams(c)
	if !ok {
		return
	}

	var store models.Location
	if raw := c.Query("store"); raw != "" {
		parsed, valid := models.ParseLocation(raw)
		if !valid || !parsed.IsStore() {
			respondError(c, h.logger, ledger.ErrUnknownStore)
			return
		}
		store = parsed
	}
	c.JSON(http.StatusOK, h.reporting.Closings(store, from, to))
}

// ExportJSON downloads the full backup.
func (h *ReportsHandler) ExportJSON(c *gin.Context) {
	data, err := h.ledger.Export()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="gelato-backup-%s.json"`, h.now().In(h.location).Format("2006-01-02")))
	c.Data(http.StatusOK, "application/json", data)
}

// ImportJSON replaces the ledger with an uploaded backup.
func (h *ReportsHandler) ImportJSON(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	if err := h.ledger.Import(c.Request.Context(), data); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportCSV downloads production and closing events as CSV.
func (h *ReportsHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.ledger.Snapshot()); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="gelato-ledger-%s.csv"`, h.now().In(h.location).Format("2006-01-02")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Insights returns the advisor's summary of the current stock.
func (h *ReportsHandler) Insights(c *gin.Context) {
	snap := h.ledger.Snapshot()
	c.JSON(http.StatusOK, gin.H{"summary": h.advisor.Summarize(c.Request.Context(), snap.Buckets, snap.Flavors)})
}

func (h *ReportsHandler) rangeParams(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := parseTimeParam(c.Query("from"), h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	to, err := parseTimeParam(c.Query("to"), h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
