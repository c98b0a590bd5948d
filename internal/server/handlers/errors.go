package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/service/ledger"
)

var notFound = []error{
	ledger.ErrFlavorNotFound,
	ledger.ErrCategoryNotFound,
	ledger.ErrBucketNotFound,
}

var badRequest = []error{
	ledger.ErrEmptyProduction,
	ledger.ErrInvalidWeight,
	ledger.ErrUnknownStore,
	ledger.ErrUnknownBucket,
	ledger.ErrInvalidFlavor,
	ledger.ErrInvalidCategory,
	ledger.ErrInvalidImport,
}

// respondError maps ledger sentinels onto HTTP status codes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func invalidBody(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

var queryLayouts = []string{time.RFC3339, "2006-01-02"}

// parseTimeParam reads an optional date or timestamp. Bare dates are taken at
// midnight in loc.
func parseTimeParam(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range queryLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
