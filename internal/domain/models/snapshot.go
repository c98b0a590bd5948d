package models

// Snapshot holds every durable collection of the ledger.
type Snapshot struct {
	Buckets        []Bucket        `json:"buckets"`
	Flavors        []Flavor        `json:"flavors"`
	Categories     []Category      `json:"categories"`
	ProductionLogs []ProductionLog `json:"productionLogs"`
	ClosingLogs    []ClosingLog    `json:"closingLogs"`
}

// Clone returns a deep copy so callers can't alias ledger state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Buckets:        cloneSlice(s.Buckets),
		Flavors:        cloneSlice(s.Flavors),
		Categories:     cloneSlice(s.Categories),
		ProductionLogs: cloneSlice(s.ProductionLogs),
		ClosingLogs:    cloneSlice(s.ClosingLogs),
	}
	for i := range out.Flavors {
		out.Flavors[i].CategoryIDs = cloneSlice(out.Flavors[i].CategoryIDs)
	}
	for i := range out.ClosingLogs {
		out.ClosingLogs[i].Items = cloneSlice(out.ClosingLogs[i].Items)
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
