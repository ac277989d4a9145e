package model

import (
	"time"
)

const (
	SimulationStatusQueued    = "queued"
	SimulationStatusRunning   = "running"
	SimulationStatusCompleted = "completed"
	SimulationStatusCanceled  = "canceled"
	SimulationStatusFailed    = "failed"
)

// Simulation is a bounded load-simulation run against a single target URL.
// Records live in Redis only; they are not part of the relational schema.
type Simulation struct {
	ID                string     `json:"id"`
	Target            string     `json:"target"`
	Workers           int        `json:"workers"`
	RequestsPerWorker int        `json:"requestsPerWorker"`
	Status            string     `json:"status"`
	Sent              int64      `json:"sent"`
	Failed            int64      `json:"failed"`
	Error             *string    `json:"error,omitempty"`
	RequestedBy       string     `json:"requestedBy"`
	CreatedAt         time.Time  `json:"createdAt"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	FinishedAt        *time.Time `json:"finishedAt,omitempty"`
}

func (s *Simulation) Finished() bool {
	switch s.Status {
	case SimulationStatusCompleted, SimulationStatusCanceled, SimulationStatusFailed:
		return true
	}
	return false
}
