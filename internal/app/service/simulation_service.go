package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"hackr_api/internal/common"
	"hackr_api/internal/domain/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultSimulationWorkers           = 10
	DefaultSimulationRequestsPerWorker = 100
	simulationKeyPrefix                = "simulation:"
	simulationRecordTTL                = 24 * time.Hour
)

type SimulationOptions struct {
	QueueName            string
	MaxWorkers           int
	MaxRequestsPerWorker int
}

// SimulationService stores simulation records in Redis and feeds their ids
// to the worker queue.
type SimulationService struct {
	rdb  *redis.Client
	opts SimulationOptions
	now  func() time.Time
}

func NewSimulationService(rdb *redis.Client, opts SimulationOptions) *SimulationService {
	return &SimulationService{rdb: rdb, opts: opts, now: time.Now}
}

type StartSimulationRequest struct {
	Domain            string `json:"domain"`
	NumWorkers        int    `json:"numWorkers"`
	RequestsPerWorker int    `json:"requestsPerWorker"`
}

func simulationKey(id string) string {
	return simulationKeyPrefix + id
}

// normalizeTarget accepts a bare host or an http(s) URL.
func normalizeTarget(domain string) (string, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", common.NewClientError(common.ErrValidation, "Domain is required.")
	}
	if !strings.Contains(domain, "://") {
		domain = "http://" + domain
	}
	u, err := url.Parse(domain)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", common.NewClientError(common.ErrValidation, "Domain must be a valid http(s) URL.")
	}
	return u.String(), nil
}

func clamp(v, def, max int) int {
	if v <= 0 {
		v = def
	}
	if v > max {
		v = max
	}
	return v
}

// Start records a queued simulation and pushes its id to the worker queue.
func (s *SimulationService) Start(ctx context.Context, req StartSimulationRequest, requestedBy string) (*model.Simulation, error) {
	target, err := normalizeTarget(req.Domain)
	if err != nil {
		return nil, err
	}

	sim := &model.Simulation{
		ID:                uuid.NewString(),
		Target:            target,
		Workers:           clamp(req.NumWorkers, DefaultSimulationWorkers, s.opts.MaxWorkers),
		RequestsPerWorker: clamp(req.RequestsPerWorker, DefaultSimulationRequestsPerWorker, s.opts.MaxRequestsPerWorker),
		Status:            model.SimulationStatusQueued,
		RequestedBy:       requestedBy,
		CreatedAt:         s.now().UTC(),
	}

	if err := s.Save(ctx, sim); err != nil {
		return nil, err
	}
	if err := s.rdb.LPush(ctx, s.opts.QueueName, sim.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to push simulation %s to queue: %w", sim.ID, err)
	}

	slog.Info("simulation enqueued", "id", sim.ID, "target", sim.Target, "workers", sim.Workers, "requests_per_worker", sim.RequestsPerWorker)
	return sim, nil
}

func (s *SimulationService) Get(ctx context.Context, id string) (*model.Simulation, error) {
	raw, err := s.rdb.Get(ctx, simulationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.NewClientError(common.ErrNotFound, "Simulation not found")
		}
		return nil, fmt.Errorf("failed to load simulation %s: %w", id, err)
	}
	var sim model.Simulation
	if err := json.Unmarshal(raw, &sim); err != nil {
		return nil, fmt.Errorf("failed to decode simulation %s: %w", id, err)
	}
	return &sim, nil
}

// Save overwrites the record and refreshes its TTL.
func (s *SimulationService) Save(ctx context.Context, sim *model.Simulation) error {
	raw, err := json.Marshal(sim)
	if err != nil {
		return fmt.Errorf("failed to encode simulation %s: %w", sim.ID, err)
	}
	if err := s.rdb.Set(ctx, simulationKey(sim.ID), raw, simulationRecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to store simulation %s: %w", sim.ID, err)
	}
	return nil
}
