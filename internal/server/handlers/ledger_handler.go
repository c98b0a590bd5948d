package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/ledger"
)

// LedgerHandler exposes the inventory ledger's operations.
type LedgerHandler struct {
	ledger   *ledger.Ledger
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter. Dates without a time
// are interpreted in loc.
func NewLedgerHandler(l *ledger.Ledger, loc *time.Location, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerHandler{ledger: l, location: loc, now: time.Now, logger: logger}
}

// State returns every durable collection.
func (h *LedgerHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Snapshot())
}

type productionRequest struct {
	Date    string                   `json:"date"`
	Entries []ledger.ProductionEntry `json:"entries"`
}

// Produce records a production batch.
func (h *LedgerHandler) Produce(c *gin.Context) {
	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	date, err := parseTimeParam(req.Date, h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if date.IsZero() {
		date = h.now()
	}

	buckets, err := h.ledger.Produce(c.Request.Context(), date, req.Entries)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"buckets": buckets})
}

type distributionRequest struct {
	Store     string   `json:"store" binding:"required"`
	BucketIDs []string `json:"bucketIds"`
}

// Distribute moves factory buckets to a store.
func (h *LedgerHandler) Distribute(c *gin.Context) {
	var req distributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	store, ok := models.ParseLocation(req.Store)
	if !ok {
		respondError(c, h.logger, ledger.ErrUnknownStore)
		return
	}

	moved, err := h.ledger.Distribute(c.Request.Context(), store, req.BucketIDs)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": moved})
}

// StoreInventory lists the in-stock buckets of one store.
func (h *LedgerHandler) StoreInventory(c *gin.Context) {
	store, ok := models.ParseLocation(c.Param("store"))
	if !ok {
		respondError(c, h.logger, ledger.ErrUnknownStore)
		return
	}

	buckets, err := h.ledger.StoreInventory(store)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store, "buckets": buckets})
}

type closingBucket struct {
	ID          string  `json:"id" binding:"required"`
	FlavorID    string  `json:"flavorId"`
	WeightGrams float64 `json:"weightGrams"`
}

type closingRequest struct {
	Buckets []closingBucket `json:"buckets" binding:"dive"`
}

// CloseStore reconciles a store against the submitted end-of-shift weights.
func (h *LedgerHandler) CloseStore(c *gin.Context) {
	store, ok := models.ParseLocation(c.Param("store"))
	if !ok {
		respondError(c, h.logger, ledger.ErrUnknownStore)
		return
	}

	var req closingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	snapshot := make([]models.Bucket, 0, len(req.Buckets))
	for _, b := range req.Buckets {
		snapshot = append(snapshot, models.Bucket{ID: b.ID, FlavorID: b.FlavorID, WeightGrams: b.WeightGrams})
	}

	log, err := h.ledger.CloseStore(c.Request.Context(), store, snapshot)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

// UpdateBucket corrects a bucket's weight or note.
func (h *LedgerHandler) UpdateBucket(c *gin.Context) {
	var upd ledger.BucketUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	bucket, err := h.ledger.UpdateBucket(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bucket)
}

// DeleteBucket removes a bucket.
func (h *LedgerHandler) DeleteBucket(c *gin.Context) {
	if err := h.ledger.DeleteBucket(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFlavors returns all flavors, or only active ones with ?active=true.
func (h *LedgerHandler) ListFlavors(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	if activeOnly {
		c.JSON(http.StatusOK, h.ledger.ActiveFlavors())
		return
	}
	c.JSON(http.StatusOK, h.ledger.Flavors())
}

func (h *LedgerHandler) CreateFlavor(c *gin.Context) {
	var in ledger.FlavorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	flavor, err := h.ledger.CreateFlavor(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, flavor)
}

func (h *LedgerHandler) UpdateFlavor(c *gin.Context) {
	var in ledger.FlavorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	flavor, err := h.ledger.UpdateFlavor(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flavor)
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetFlavorActive toggles a flavor without touching its history.
func (h *LedgerHandler) SetFlavorActive(c *gin.Context) {
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	flavor, err := h.ledger.SetFlavorActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, flavor)
}

func (h *LedgerHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Categories())
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	category, err := h.ledger.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *LedgerHandler) RenameCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	category, err := h.ledger.RenameCategory(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category; flavors keep their stale references.
func (h *LedgerHandler) DeleteCategory(c *gin.Context) {
	if err := h.ledger.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Notifications())
}

func (h *LedgerHandler) DismissNotification(c *gin.Context) {
	if !h.ledger.DismissNotification(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
