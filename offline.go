package vaultkeep

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SyncState is the offline coordinator's lifecycle state.
type SyncState int

const (
	// SyncStopped means no run loop is active.
	SyncStopped SyncState = iota
	// SyncIdle means the coordinator is running with nothing to push.
	SyncIdle
	// SyncPending means local changes are waiting for connectivity or a
	// retry.
	SyncPending
	// SyncSyncing means a push is in flight.
	SyncSyncing
)

func (s SyncState) String() string {
	switch s {
	case SyncStopped:
		return "stopped"
	case SyncIdle:
		return "idle"
	case SyncPending:
		return "pending"
	case SyncSyncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// pusher is the slice of the sync engine the coordinator drives.
type pusher interface {
	PushLocal(ctx context.Context, userID string) (int, error)
}

// Coordinator observes the external connectivity signal and drives the sync
// engine. Local reads and writes are never gated on it: going offline only
// marks sync as pending, and a restored connection resumes pushing.
//
// All connectivity transitions and push attempts are processed sequentially
// by a single run-loop goroutine, so a handler is never re-entered while a
// previous transition is still being handled, no matter how fast the signal
// flaps. Failed pushes stay pending and are retried with bounded
// exponential backoff; any connectivity transition resets the backoff.
//
// The coordinator assumes it is offline until the first connectivity event
// arrives.
type Coordinator struct {
	engine       pusher
	connectivity <-chan bool
	log          *zap.Logger

	retryInitial    time.Duration
	retryMax        time.Duration
	retryMultiplier float64
	retryJitter     float64

	// startStopMu serializes StartSync and StopSync. Without it a
	// StartSync arriving while StopSync is between cancelling the loop
	// and marking the state stopped would see a non-stopped state, start
	// no loop, and lose its sync request.
	startStopMu sync.Mutex

	mu      sync.Mutex
	state   SyncState
	online  bool
	pending bool
	userID  string
	cancel  context.CancelFunc
	done    chan struct{}

	// kick is signalled (coalesced) by StartSync.
	kick chan struct{}
}

// NewCoordinator creates a coordinator over the given engine and
// connectivity stream. The stream is supplied externally; the coordinator
// owns its single subscription from StartSync until StopSync.
func NewCoordinator(engine pusher, connectivity <-chan bool, opts ...Option) *Coordinator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Coordinator{
		engine:          engine,
		connectivity:    connectivity,
		log:             cfg.logger,
		retryInitial:    cfg.retryInitialInterval,
		retryMax:        cfg.retryMaxBackoff,
		retryMultiplier: cfg.retryBackoffMultiplier,
		retryJitter:     cfg.retryJitterFactor,
		kick:            make(chan struct{}, 1),
	}
}

// StartSync requests a sync for the given user. If the coordinator is
// online the push happens immediately; if offline, sync is marked pending
// and runs when connectivity is restored. The first call starts the run
// loop.
func (c *Coordinator) StartSync(userID string) {
	c.startStopMu.Lock()
	defer c.startStopMu.Unlock()

	c.mu.Lock()
	c.userID = userID
	if c.state == SyncStopped {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.done = make(chan struct{})
		c.state = SyncIdle
		go c.run(ctx)
	}
	c.mu.Unlock()

	select {
	case c.kick <- struct{}{}:
	default:
		// A sync request is already queued; coalesce.
	}
}

// StopSync stops the run loop and cancels the connectivity subscription.
// A push in flight finishes or fails on its own; no new one starts. Safe to
// call at any time, including repeatedly.
func (c *Coordinator) StopSync() {
	c.startStopMu.Lock()
	defer c.startStopMu.Unlock()

	c.mu.Lock()
	if c.state == SyncStopped {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.state = SyncStopped
	c.cancel = nil
	c.mu.Unlock()
}

// State returns the coordinator's current state.
func (c *Coordinator) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether local changes are waiting to be pushed.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	conn := c.connectivity
	backoff := c.retryInitial
	var retryTimer *time.Timer
	var retryC <-chan time.Time

	stopRetry := func() {
		if retryTimer != nil {
			retryTimer.Stop()
			retryTimer = nil
			retryC = nil
		}
	}
	scheduleRetry := func(d time.Duration) {
		stopRetry()
		retryTimer = time.NewTimer(d)
		retryC = retryTimer.C
	}
	defer stopRetry()

	for {
		select {
		case <-ctx.Done():
			return

		case online, ok := <-conn:
			if !ok {
				// Signal source went away; keep running on explicit
				// kicks and retries only.
				conn = nil
				continue
			}
			c.handleConnectivity(ctx, online, &backoff, stopRetry, scheduleRetry)

		case <-c.kick:
			c.handleSyncRequest(ctx, &backoff, scheduleRetry)

		case <-retryC:
			retryC = nil
			retryTimer = nil
			c.handleRetry(ctx, &backoff, scheduleRetry)
		}
	}
}

func (c *Coordinator) handleConnectivity(ctx context.Context, online bool, backoff *time.Duration, stopRetry func(), scheduleRetry func(time.Duration)) {
	c.mu.Lock()
	wasOnline := c.online
	c.online = online
	pending := c.pending
	userID := c.userID
	if !online {
		// Going offline never interrupts anything local; it only parks
		// sync until the connection returns.
		c.pending = true
		if c.state != SyncStopped {
			c.state = SyncPending
		}
	}
	c.mu.Unlock()

	if online == wasOnline {
		// Duplicate event, not a transition; leave any scheduled retry
		// alone.
		return
	}

	*backoff = c.retryInitial
	stopRetry()

	if !online {
		c.log.Info("connectivity lost, sync parked")
		return
	}

	c.log.Info("connectivity restored")
	if pending && userID != "" {
		c.attemptPush(ctx, userID, backoff, scheduleRetry)
	}
}

func (c *Coordinator) handleSyncRequest(ctx context.Context, backoff *time.Duration, scheduleRetry func(time.Duration)) {
	c.mu.Lock()
	online := c.online
	userID := c.userID
	if !online {
		c.pending = true
		c.state = SyncPending
	}
	c.mu.Unlock()

	if !online {
		c.log.Debug("sync requested while offline, marked pending")
		return
	}
	if userID != "" {
		c.attemptPush(ctx, userID, backoff, scheduleRetry)
	}
}

func (c *Coordinator) handleRetry(ctx context.Context, backoff *time.Duration, scheduleRetry func(time.Duration)) {
	c.mu.Lock()
	online := c.online
	pending := c.pending
	userID := c.userID
	c.mu.Unlock()

	if online && pending && userID != "" {
		c.attemptPush(ctx, userID, backoff, scheduleRetry)
	}
}

// attemptPush runs one push pass synchronously in the run loop. On failure
// the pending flag stays set and a retry is scheduled with the next backoff
// interval.
func (c *Coordinator) attemptPush(ctx context.Context, userID string, backoff *time.Duration, scheduleRetry func(time.Duration)) {
	c.mu.Lock()
	c.state = SyncSyncing
	c.mu.Unlock()

	pushed, err := c.engine.PushLocal(ctx, userID)

	c.mu.Lock()
	if err != nil {
		c.pending = true
		c.state = SyncPending
	} else {
		c.pending = false
		c.state = SyncIdle
	}
	c.mu.Unlock()

	if err != nil {
		delay := c.withJitter(*backoff)
		c.log.Warn("sync push failed, will retry",
			zap.Int("pushed", pushed),
			zap.Duration("retry_in", delay),
			zap.Error(err))
		scheduleRetry(delay)
		*backoff = c.nextBackoff(*backoff)
		return
	}

	*backoff = c.retryInitial
	c.log.Info("sync push complete", zap.Int("pushed", pushed))
}

func (c *Coordinator) nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.retryMultiplier)
	if next > c.retryMax {
		next = c.retryMax
	}
	return next
}

func (c *Coordinator) withJitter(d time.Duration) time.Duration {
	// Jitter prevents a fleet of clients from retrying in lockstep.
	return d + time.Duration(rand.Float64()*c.retryJitter*float64(d))
}
