package mongodb

import (
	"sort"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

func sortClosingLogs(logs []models.ClosingLog) {
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].ClosedAt.After(logs[j].ClosedAt) })
}

func sortProductionLogs(logs []models.ProductionLog) {
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].ProducedAt.Before(logs[j].ProducedAt) })
}
