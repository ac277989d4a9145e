package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"hackr_api/internal/domain/model"
	"hackr_api/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// releaseLockScript deletes the lock only if it still holds our value.
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// extendLockScript refreshes the lock TTL only if it still holds our value.
var extendLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("pexpire", KEYS[1], ARGV[2])
else
    return 0
end
`)

// SimulationStore reads and writes simulation records.
type SimulationStore interface {
	Get(ctx context.Context, id string) (*model.Simulation, error)
	Save(ctx context.Context, sim *model.Simulation) error
}

type Options struct {
	QueueName      string
	LockKey        string
	LockTTL        time.Duration
	RequestTimeout time.Duration
	// PollTimeout bounds each BRPOP so shutdown is noticed promptly.
	PollTimeout      time.Duration
	RequeueDelay     time.Duration
	ProgressInterval time.Duration
}

func (o *Options) setDefaults() {
	if o.LockTTL <= 0 {
		o.LockTTL = 10 * time.Minute
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 5 * time.Second
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = time.Second
	}
	if o.RequeueDelay <= 0 {
		o.RequeueDelay = 2 * time.Second
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = time.Second
	}
}

// SimulationWorker runs queued simulations one at a time across all replicas.
type SimulationWorker struct {
	rdb    *redis.Client
	store  SimulationStore
	client *http.Client
	opts   Options
	now    func() time.Time
}

func NewSimulationWorker(rdb *redis.Client, store SimulationStore, opts Options) *SimulationWorker {
	opts.setDefaults()
	return &SimulationWorker{
		rdb:    rdb,
		store:  store,
		client: &http.Client{},
		opts:   opts,
		now:    time.Now,
	}
}

// Start blocks until ctx is cancelled. A simulation in progress at that point
// is stopped and recorded as canceled.
func (w *SimulationWorker) Start(ctx context.Context) {
	slog.Info("simulation worker started", "queue", w.opts.QueueName)
	for {
		if ctx.Err() != nil {
			slog.Info("simulation worker stopping")
			return
		}

		res, err := w.rdb.BRPop(ctx, w.opts.PollTimeout, w.opts.QueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			slog.Error("failed to pop from simulation queue", "queue", w.opts.QueueName, "error", err)
			sleep(ctx, 5*time.Second)
			continue
		}

		// res is [queueName, value]
		if len(res) < 2 || res[1] == "" {
			slog.Warn("simulation queue returned an empty id")
			continue
		}
		w.processWithLock(ctx, res[1])
	}
}

func (w *SimulationWorker) processWithLock(ctx context.Context, id string) {
	lockValue := uuid.NewString()
	ok, err := w.rdb.SetNX(ctx, w.opts.LockKey, lockValue, w.opts.LockTTL).Result()
	if err != nil {
		slog.Error("failed to acquire simulation lock", "id", id, "error", err)
		w.requeue(ctx, id)
		return
	}
	if !ok {
		slog.Info("simulation lock busy, requeueing", "id", id)
		w.requeue(ctx, id)
		return
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		deleted, err := releaseLockScript.Run(releaseCtx, w.rdb, []string{w.opts.LockKey}, lockValue).Int64()
		switch {
		case err != nil:
			slog.Error("failed to release simulation lock", "id", id, "error", err)
		case deleted == 0:
			slog.Warn("simulation lock expired or taken before release", "id", id)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopRenew := w.renewLock(runCtx, cancel, id, lockValue)
	defer stopRenew()

	if err := w.Run(runCtx, id); err != nil {
		slog.Error("simulation failed", "id", id, "error", err)
	}
}

// renewLock pushes the lock expiry forward every third of LockTTL while a run
// is in progress. If the lock is found lost, the run is canceled so two
// replicas never drive simulations at the same time.
func (w *SimulationWorker) renewLock(ctx context.Context, cancelRun context.CancelFunc, id, lockValue string) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(w.opts.LockTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				extended, err := extendLockScript.Run(ctx, w.rdb, []string{w.opts.LockKey}, lockValue, w.opts.LockTTL.Milliseconds()).Int64()
				if err != nil {
					if ctx.Err() == nil {
						slog.Warn("failed to extend simulation lock", "id", id, "error", err)
					}
					continue
				}
				if extended == 0 {
					slog.Error("simulation lock lost, stopping run", "id", id)
					cancelRun()
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

// requeue pushes id back after a short delay; the delay is skipped on shutdown.
func (w *SimulationWorker) requeue(ctx context.Context, id string) {
	sleep(ctx, w.opts.RequeueDelay)
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.rdb.RPush(pushCtx, w.opts.QueueName, id).Err(); err != nil {
		slog.Error("failed to requeue simulation", "id", id, "error", err)
	}
}

// Run executes one simulation and persists its final state. It assumes the
// caller holds the lock.
func (w *SimulationWorker) Run(ctx context.Context, id string) error {
	sim, err := w.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading simulation: %w", err)
	}
	if sim.Finished() {
		slog.Warn("skipping finished simulation", "id", id, "status", sim.Status)
		return nil
	}

	started := w.now().UTC()
	sim.Status = model.SimulationStatusRunning
	sim.StartedAt = &started
	if err := w.store.Save(ctx, sim); err != nil {
		return fmt.Errorf("marking simulation running: %w", err)
	}
	slog.Info("simulation started", "id", id, "target", sim.Target, "workers", sim.Workers)

	var sent, failed atomic.Int64
	stopProgress := w.reportProgress(ctx, sim, &sent, &failed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sim.Workers)
	for i := 0; i < sim.Workers; i++ {
		g.Go(func() error {
			for j := 0; j < sim.RequestsPerWorker; j++ {
				if gctx.Err() != nil {
					return nil
				}
				if err := w.hit(gctx, sim.Target); err != nil {
					failed.Add(1)
					metrics.SimulationRequestsTotal.WithLabelValues("failed").Inc()
					continue
				}
				sent.Add(1)
				metrics.SimulationRequestsTotal.WithLabelValues("sent").Inc()
			}
			return nil
		})
	}
	_ = g.Wait()
	stopProgress()

	finished := w.now().UTC()
	sim.Sent = sent.Load()
	sim.Failed = failed.Load()
	sim.FinishedAt = &finished
	switch {
	case ctx.Err() != nil:
		sim.Status = model.SimulationStatusCanceled
	case sim.Sent == 0 && sim.Failed > 0:
		msg := fmt.Sprintf("all %d requests failed", sim.Failed)
		sim.Status = model.SimulationStatusFailed
		sim.Error = &msg
	default:
		sim.Status = model.SimulationStatusCompleted
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := w.store.Save(saveCtx, sim); err != nil {
		return fmt.Errorf("saving final simulation state: %w", err)
	}
	slog.Info("simulation finished", "id", id, "status", sim.Status, "sent", sim.Sent, "failed", sim.Failed)
	return nil
}

// reportProgress periodically saves running counters until the returned stop
// func is called.
func (w *SimulationWorker) reportProgress(ctx context.Context, sim *model.Simulation, sent, failed *atomic.Int64) func() {
	done := make(chan struct{})
	stopped := make(chan struct{})
	snapshot := *sim

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(w.opts.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				snapshot.Sent = sent.Load()
				snapshot.Failed = failed.Load()
				if err := w.store.Save(ctx, &snapshot); err != nil {
					slog.Warn("failed to save simulation progress", "id", snapshot.ID, "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}

// hit sends one GET; any response counts as sent, transport errors as failed.
func (w *SimulationWorker) hit(ctx context.Context, target string) error {
	reqCtx, cancel := context.WithTimeout(ctx, w.opts.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
