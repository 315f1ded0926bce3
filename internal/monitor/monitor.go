// internal/monitor/monitor.go
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/recall/internal/types"
	"github.com/user/recall/pkg/api"
)

// Probe checks one aspect of the backend and returns a short report.
type Probe struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (string, error)
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Monitor fires probes on cron schedules and raises a notification each
// time a probe's outcome flips between passing and failing.
type Monitor struct {
	probes   []Probe
	notifier types.Notifier
	timeout  time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	passing map[string]bool
}

// New creates a monitor over the given probes. The notifier may be nil,
// which reduces the monitor to logging.
func New(probes []Probe, notifier types.Notifier) *Monitor {
	return &Monitor{
		probes:   probes,
		notifier: notifier,
		timeout:  10 * time.Second,
		cron:     cron.New(cron.WithParser(cronParser)),
		passing:  make(map[string]bool),
	}
}

// Start registers every probe with a valid schedule and starts the cron
// ticker. Invalid schedules are logged and skipped.
func (m *Monitor) Start() {
	for _, probe := range m.probes {
		if probe.Schedule == "" {
			continue
		}
		p := probe
		_, err := m.cron.AddFunc(p.Schedule, func() { m.fire(p) })
		if err != nil {
			slog.Error("invalid probe schedule", "probe", p.Name, "schedule", p.Schedule, "error", err)
			continue
		}
		slog.Info("scheduled probe", "probe", p.Name, "schedule", p.Schedule)
	}
	m.cron.Start()
}

// Stop stops the cron ticker.
func (m *Monitor) Stop() {
	m.cron.Stop()
}

// fire runs one probe and notifies on pass/fail flips. Repeats of the
// same outcome stay quiet.
func (m *Monitor) fire(probe Probe) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	report, err := probe.Run(ctx)
	now := err == nil

	if now {
		slog.Info("probe passed", "probe", probe.Name, "report", report)
	} else {
		slog.Warn("probe failed", "probe", probe.Name, "error", err)
	}

	m.mu.Lock()
	prev, known := m.passing[probe.Name]
	m.passing[probe.Name] = now
	m.mu.Unlock()

	if known && prev == now {
		return
	}
	if !known && now {
		// First sighting of a healthy backend is not news.
		return
	}

	subject := fmt.Sprintf("%s probe recovered", probe.Name)
	body := report
	if !now {
		subject = fmt.Sprintf("%s probe failed", probe.Name)
		body = err.Error()
	}
	m.notify(ctx, subject, body)
}

func (m *Monitor) notify(ctx context.Context, subject, body string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, subject, body); err != nil {
		slog.Warn("probe notification failed", "subject", subject, "error", err)
	}
}

// HealthProbe reports backend liveness.
func HealthProbe(client *api.Client, schedule string) Probe {
	return Probe{
		Name:     "health",
		Schedule: schedule,
		Run: func(ctx context.Context) (string, error) {
			h, err := client.Health(ctx)
			if err != nil {
				return "", err
			}
			if h.Status != "healthy" {
				return "", fmt.Errorf("backend reports %q", h.Status)
			}
			return fmt.Sprintf("%s (%s)", h.Status, h.Service), nil
		},
	}
}

// CacheProbe reports cache effectiveness.
func CacheProbe(client *api.Client, schedule string) Probe {
	return Probe{
		Name:     "cache",
		Schedule: schedule,
		Run: func(ctx context.Context) (string, error) {
			stats, err := client.CacheStats(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(
				"retrieval %.1f%% hit (%d/%d), answer %.1f%% hit (%d/%d)",
				stats.Retrieval.HitRatePct, stats.Retrieval.CurrentSize, stats.Retrieval.MaxSize,
				stats.Answer.HitRatePct, stats.Answer.CurrentSize, stats.Answer.MaxSize,
			), nil
		},
	}
}
