package utils

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cppla/momentum/ledger"
)

// StartLedgerEvictor periodically drops ledgers idle for longer than idle from
// the registry. Their documents stay in the store and are reloaded on demand.
// The returned cron must be stopped on shutdown.
func StartLedgerEvictor(reg *ledger.Registry, schedule string, idle time.Duration) (*cron.Cron, error) {
	if schedule == "" {
		schedule = "@every 5m"
	}
	if idle <= 0 {
		idle = 30 * time.Minute
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		if n := reg.EvictIdle(idle); n > 0 {
			Sugar.Debugf("ledger evictor dropped %d idle ledgers, %d resident", n, reg.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	Sugar.Infof("ledger evictor started schedule=%q idle=%s", schedule, idle)
	c.Start()
	return c, nil
}
