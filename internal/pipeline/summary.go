package pipeline

import (
	"salesdw/internal/conform"
	"salesdw/internal/resolve"
)

// Summary reports one run. It is safe to marshal as JSON.
type Summary struct {
	RunID          string        `json:"run_id"`
	Job            string        `json:"job"`
	Users          resolve.Stats `json:"users"`
	Locations      resolve.Stats `json:"locations"`
	Dates          resolve.Stats `json:"dates"`
	Products       resolve.Stats `json:"products"`
	Facts          conform.Stats `json:"facts"`
	ElapsedSeconds float64       `json:"elapsed_seconds"`
	FailedStage    Stage         `json:"failed_stage,omitempty"`
}
