package messages

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const (
	defaultRefreshTimeout = 30 * time.Second
	defaultWarmupTimeout  = 5 * time.Second
)

// Refresher re-fetches bundles for a fixed set of locales on a cron schedule.
type Refresher struct {
	cron    *cron.Cron
	loader  *Loader
	logger  *slog.Logger
	locales []string
	timeout time.Duration
	warmup  time.Duration
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithWarmupTimeout bounds the initial refresh done by Start.
func WithWarmupTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.warmup = d
		}
	}
}

// NewRefresher validates spec ("@every 50m", "*/30 * * * *") and prepares
// the schedule. Nothing runs until Start.
func NewRefresher(l *Loader, locales []string, spec string, opts ...RefresherOption) (*Refresher, error) {
	sched, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	r := &Refresher{
		loader:  l,
		logger:  l.logger,
		locales: locales,
		timeout: defaultRefreshTimeout,
		warmup:  defaultWarmupTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.cron = cron.New(
		cron.WithParser(scheduleParser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{r.logger})),
	)
	r.cron.Schedule(sched, cron.FuncJob(r.run))

	return r, nil
}

// RefreshAll refreshes every locale once and joins the failures.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, locale := range r.locales {
		if err := r.loader.Refresh(ctx, locale); err != nil {
			r.logger.WarnContext(ctx, "translation refresh failed",
				slog.String("locale", locale),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start warms the cache and starts the schedule. The warm-up shares one
// deadline across all locales; failures are logged, not returned, and
// missing bundles are fetched on first use.
func (r *Refresher) Start(ctx context.Context) error {
	wctx, cancel := context.WithTimeout(ctx, r.warmup)
	_ = r.RefreshAll(wctx)
	cancel()
	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh or ctx.
func (r *Refresher) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	_ = r.RefreshAll(ctx)
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug("cron: "+msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "error", err)...)
}
