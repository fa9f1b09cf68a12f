package rtlink

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Link wires a Transport and a role (host or client) to a PTPLayer and
// a TaskManager, and drives the single-threaded cooperative tick loop
// described in spec §5. Grounded on aznet.go's Conn (struct holding
// transport + poll + id + cfg), narrowed to a single Run goroutine: the
// spec's contract is one tick = one full cycle with no concurrent
// mutation of manager state, so unlike Conn there is no extra
// background keepAlive goroutine.
type Link struct {
	ID uuid.UUID

	Transport Transport
	IsHost    bool

	PTP     *PTPLayer
	Manager *TaskManager

	cfg *Config
}

// NewLink constructs a Link. now supplies the monotonic microsecond
// clock source the embedding program owns (out of scope per spec §1).
func NewLink(t Transport, isHost bool, now Clock, opts ...Option) (*Link, error) {
	cfg := applyConfig(opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	manager := &TaskManager{limit: cfg.maxTasks}
	return &Link{
		ID:        uuid.New(),
		Transport: t,
		IsHost:    isHost,
		PTP:       NewPTPLayer(now, isHost, cfg.cycleTimeUS),
		Manager:   manager,
		cfg:       cfg,
	}, nil
}

// Metrics returns the Link's configured Metrics sink.
func (l *Link) Metrics() Metrics { return l.cfg.metrics }

// Close cancels the Link's base context, unblocking a running Run loop.
func (l *Link) Close() {
	if l.cfg.cancel != nil {
		l.cfg.cancel()
	}
}

func (l *Link) countPanics() {
	for i := 0; i < l.Manager.NNodes; i++ {
		if l.Manager.Nodes[i].Status == Panic {
			l.cfg.metrics.IncrementNodePanics()
		}
	}
}

// Tick runs exactly one cycle: drain one inbound packet (if any),
// advance node state via Spin or ControlSpin depending on role, publish
// one outbound packet (a node's, or a bare PTP probe if none is ready),
// and pace to the fixed cycle time. A failed read (ErrNoData) is
// absorbed — the core interprets absence as nothing to collect this
// tick (spec §5). A failed write is returned to the caller, not
// retried (spec §4.3).
func (l *Link) Tick() error {
	var in Packet
	if err := l.Transport.Read(&in); err == nil {
		l.PTP.ReadIncoming(&in)
		l.Manager.Collect(&in)
	} else if !errors.Is(err, ErrNoData) {
		return err
	}

	l.countPanics()
	if l.IsHost {
		l.Manager.ControlSpin()
	} else {
		l.Manager.Spin()
	}

	out, published := l.Manager.PublishOne()
	if !published {
		out = Probe()
	}
	l.PTP.StampOutgoing(&out)

	if err := l.Transport.Write(&out); err != nil {
		return err
	}
	if published {
		l.cfg.metrics.IncrementPublished()
	}

	l.cfg.metrics.IncrementTicks()
	l.cfg.metrics.ObservePTPOffsetUS(l.PTP.PTPOffset())

	l.PTP.Timestep(RIDCycleTimeUS)
	l.PTP.Delay()
	return nil
}

// Run ticks the Link until ctx or the Link's base context (see
// WithContext and Close) is canceled, or a tick returns an error.
func (l *Link) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.cfg.ctx.Done():
			return l.cfg.ctx.Err()
		default:
		}
		if err := l.Tick(); err != nil {
			return err
		}
	}
}

// InitNode deploys a fully-configured Task to node id (host-side only —
// see SPEC_FULL.md §6). It has no effect on a client-role Link beyond
// populating local bookkeeping nobody will read.
func (l *Link) InitNode(id int, driverID byte, stream bool, rate uint16, inputs []InputRef, task Task) error {
	return l.Manager.DeployNode(id, driverID, stream, rate, inputs, task)
}

// Reconfigure re-sends node id's configuration under a fresh chunk
// identity (SPEC_FULL.md §9).
func (l *Link) Reconfigure(id int, task Task) error {
	return l.Manager.Reconfigure(id, task)
}

// PanicAll forces every live node into Panic, cascading into a full
// table reset on the next tick (and, on the host, a single Kill packet).
func (l *Link) PanicAll() {
	l.Manager.PanicAll()
}
