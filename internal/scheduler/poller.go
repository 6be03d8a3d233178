package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Poller invokes the executor once at startup and then at a fixed interval.
// A tick that arrives while the previous pass is still running is skipped;
// invocations never overlap. Errors are logged and never stop the poller.
type Poller struct {
	exec     *Executor
	interval time.Duration
	cron     *cron.Cron
	log      zerolog.Logger
}

func NewPoller(exec *Executor, interval time.Duration, log zerolog.Logger) *Poller {
	cl := cronLogger{log: log}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cl),
		cron.Recover(cl),
	))
	return &Poller{exec: exec, interval: interval, cron: c, log: log}
}

// Start runs one pass immediately, then schedules the recurring ticks. The
// first pass completes before ticking begins, so it cannot overlap a tick.
func (p *Poller) Start(ctx context.Context) error {
	p.tick(ctx)

	spec := fmt.Sprintf("@every %s", p.interval)
	if _, err := p.cron.AddFunc(spec, func() { p.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule poller: %w", err)
	}
	p.cron.Start()
	p.log.Info().Dur("interval", p.interval).Msg("poller started")
	return nil
}

// Stop halts the tick schedule and returns a context that is done once any
// in-flight pass has finished.
func (p *Poller) Stop() context.Context {
	p.log.Info().Msg("poller stopping")
	return p.cron.Stop()
}

func (p *Poller) tick(ctx context.Context) {
	sum := p.exec.Run(ctx, time.Now())
	evt := p.log.Debug()
	if sum.Executed > 0 || sum.Failed > 0 {
		evt = p.log.Info()
	}
	evt.Int("executed", sum.Executed).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Msg("scheduler pass complete")
}

// cronLogger adapts zerolog to the cron logging interface.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
