package utils

import (
	"context"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"

	"github.com/robfig/cron/v3"
)

type LedgerAuditor interface {
	AuditAll(ctx context.Context) (int, error)
}

type OTPPurger interface {
	PurgeExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type BlacklistPurger interface {
	Purge(ctx context.Context) (int64, error)
}

// Jobs are the periodic tasks. Nil fields are skipped.
type Jobs struct {
	Auditor   LedgerAuditor
	OTPs      OTPPurger
	Blacklist BlacklistPurger
}

// StartScheduler registers the ledger audit on auditSpec and hourly purges,
// then starts the cron. Stop the returned cron on shutdown.
func StartScheduler(ctx context.Context, auditSpec string, jobs Jobs, log *logger.Logger) (*cron.Cron, error) {
	log = log.With("component", "Scheduler")
	c := cron.New()

	if jobs.Auditor != nil {
		if _, err := c.AddFunc(auditSpec, func() { RunLedgerAudit(ctx, jobs.Auditor, log) }); err != nil {
			return nil, err
		}
	}
	if jobs.OTPs != nil || jobs.Blacklist != nil {
		if _, err := c.AddFunc("@hourly", func() { PurgeExpired(ctx, jobs, log) }); err != nil {
			return nil, err
		}
	}

	c.Start()
	log.Info("Scheduler started", "auditCron", auditSpec)
	return c, nil
}

func RunLedgerAudit(ctx context.Context, auditor LedgerAuditor, log *logger.Logger) {
	start := time.Now()
	repaired, err := auditor.AuditAll(ctx)
	if err != nil {
		log.Error("Ledger audit failed", "error", err, "repaired", repaired)
		return
	}
	log.Info("Ledger audit done", "repaired", repaired, "took", time.Since(start).String())
}

func PurgeExpired(ctx context.Context, jobs Jobs, log *logger.Logger) {
	now := time.Now()
	if jobs.OTPs != nil {
		n, err := jobs.OTPs.PurgeExpired(dbctx.New(ctx), now)
		if err != nil {
			log.Error("OTP purge failed", "error", err)
		} else if n > 0 {
			log.Info("Expired OTPs purged", "count", n)
		}
	}
	if jobs.Blacklist != nil {
		n, err := jobs.Blacklist.Purge(ctx)
		if err != nil {
			log.Error("Blacklist purge failed", "error", err)
		} else if n > 0 {
			log.Info("Expired blacklist entries purged", "count", n)
		}
	}
}
