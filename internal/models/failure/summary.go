package failure

import "time"

// RunSummary describes one generator run. The mill generator posts it to the
// recorder when a notify URL is configured.
type RunSummary struct {
	RunID       string         `json:"run_id" bson:"run_id" validate:"required"`
	Seed        uint64         `json:"seed" bson:"seed"`
	Start       time.Time      `json:"start" bson:"start" validate:"required"`
	End         time.Time      `json:"end" bson:"end" validate:"required,gtfield=Start"`
	Units       []string       `json:"units" bson:"units" validate:"required,min=1"`
	Rows        int            `json:"rows" bson:"rows" validate:"gt=0"`
	Columns     int            `json:"columns" bson:"columns" validate:"gt=0"`
	Failures    int            `json:"failures" bson:"failures" validate:"gte=0"`
	FailuresBy  map[string]int `json:"failures_by_unit" bson:"failures_by_unit"`
	Files       []string       `json:"files" bson:"files"`
	GeneratedAt time.Time      `json:"generated_at" bson:"generated_at"`
}
