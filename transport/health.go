package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// NodeState is the three-state machine NodeHealthMonitor drives, adapted
// from the teacher's HSM failover states: NORMAL/READ_ONLY/FAILED becomes
// Normal/Degraded/Unreachable, repointed from HSM-signing reachability to
// parent-node RPC reachability.
type NodeState int32

const (
	NodeNormal NodeState = iota
	NodeDegraded
	NodeUnreachable
)

func (s NodeState) String() string {
	switch s {
	case NodeNormal:
		return "NORMAL"
	case NodeDegraded:
		return "DEGRADED"
	case NodeUnreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

// HealthMonitorConfig carries the monitor's tunables.
type HealthMonitorConfig struct {
	HealthInterval      time.Duration
	FailThreshold       int           // consecutive failures before NodeDegraded
	UnreachableTimeout  time.Duration // time spent Degraded before NodeUnreachable; 0 = never escalate
	AlertWebhook        string        // optional; posted on every state change
}

func (cfg HealthMonitorConfig) withDefaults() HealthMonitorConfig {
	if cfg.HealthInterval == 0 {
		cfg.HealthInterval = 10 * time.Second
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 3
	}
	return cfg
}

// NodeHealthMonitor ticks NodeClient.Ping on an interval and drives
// NodeState, surfacing the parent-node's reachability so the driving task
// can decide whether to keep retrying TransportErrors or back off (spec
// §7's "caller's responsibility to retry or propagate" is implemented by
// giving the caller this state to consult).
//
// Direct adaptation of the teacher's crypto.HSMMonitor: same three-state
// machine shape, same ticking health-check loop, same
// webhook-alert-on-state-change behavior, repointed from HSM reachability
// to parent-node RPC reachability.
type NodeHealthMonitor struct {
	cfg   HealthMonitorConfig
	node  NodeClient
	ctx   telemetry.Context
	onUnreachable func()

	state           atomic.Int32
	mu              sync.Mutex
	failCount       int
	degradedSince   time.Time
}

// NewNodeHealthMonitor constructs a monitor. onUnreachable, if non-nil, is
// called once when the node transitions to NodeUnreachable.
func NewNodeHealthMonitor(cfg HealthMonitorConfig, node NodeClient, ctx telemetry.Context, onUnreachable func()) *NodeHealthMonitor {
	m := &NodeHealthMonitor{cfg: cfg.withDefaults(), node: node, ctx: ctx, onUnreachable: onUnreachable}
	m.state.Store(int32(NodeNormal))
	return m
}

// State returns the current state, safe for concurrent reads.
func (m *NodeHealthMonitor) State() NodeState {
	return NodeState(m.state.Load())
}

// Run blocks on a ticking health-check loop until ctx is cancelled.
func (m *NodeHealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *NodeHealthMonitor) tick(ctx context.Context) {
	err := m.node.Ping(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.ctx.Logger()
	current := NodeState(m.state.Load())

	if err == nil {
		if current != NodeNormal {
			log.Infow("parent node recovered", "from", current.String(), "to", NodeNormal.String())
			m.transition(current, NodeNormal, 0, "")
		}
		m.failCount = 0
		m.state.Store(int32(NodeNormal))
		return
	}

	m.failCount++
	log.Warnw("parent node health check failed", "fail_count", m.failCount, "threshold", m.cfg.FailThreshold, "error", err.Error())

	if current == NodeNormal && m.failCount >= m.cfg.FailThreshold {
		m.degradedSince = time.Now()
		m.state.Store(int32(NodeDegraded))
		log.Warnw("parent node unreachable, entering DEGRADED", "fail_count", m.failCount)
		m.transition(NodeNormal, NodeDegraded, m.failCount, err.Error())
		return
	}

	if current == NodeDegraded && m.cfg.UnreachableTimeout > 0 && time.Since(m.degradedSince) >= m.cfg.UnreachableTimeout {
		m.state.Store(int32(NodeUnreachable))
		log.Errorw("parent node unreachable timeout exceeded", "timeout", m.cfg.UnreachableTimeout.String())
		m.transition(NodeDegraded, NodeUnreachable, m.failCount, err.Error())
		if m.onUnreachable != nil {
			go m.onUnreachable()
		}
	}
}

type stateChangeAlert struct {
	Event     string `json:"event"`
	From      string `json:"from"`
	To        string `json:"to"`
	FailCount int    `json:"fail_count"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (m *NodeHealthMonitor) transition(from, to NodeState, failCount int, reason string) {
	if m.cfg.AlertWebhook == "" {
		return
	}
	payload := stateChangeAlert{
		Event:     "node_health_state_change",
		From:      from.String(),
		To:        to.String(),
		FailCount: failCount,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	webhook := m.cfg.AlertWebhook
	logger := m.ctx.Logger()
	go func() {
		resp, err := http.Post(webhook, "application/json", bytes.NewReader(b))
		if err != nil {
			logger.Warnw("node health alert webhook failed", "error", err.Error())
			return
		}
		resp.Body.Close()
	}()
}
