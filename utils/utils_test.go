package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"devlaunch/database/dbctx"
	"devlaunch/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.Regexp(t, `^\d{6}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

type fakeAuditor struct {
	calls int
	err   error
}

func (f *fakeAuditor) AuditAll(context.Context) (int, error) {
	f.calls++
	return 2, f.err
}

type fakePurger struct{ calls int }

func (f *fakePurger) PurgeExpired(dbctx.Context, time.Time) (int64, error) {
	f.calls++
	return 3, nil
}

func (f *fakePurger) Purge(context.Context) (int64, error) {
	f.calls++
	return 0, nil
}

func TestSchedulerJobs(t *testing.T) {
	ctx := context.Background()
	auditor := &fakeAuditor{}
	RunLedgerAudit(ctx, auditor, logger.Nop())
	auditor.err = errors.New("db down")
	RunLedgerAudit(ctx, auditor, logger.Nop())
	assert.Equal(t, 2, auditor.calls)

	otps, bl := &fakePurger{}, &fakePurger{}
	PurgeExpired(ctx, Jobs{OTPs: otps, Blacklist: bl}, logger.Nop())
	assert.Equal(t, 1, otps.calls)
	assert.Equal(t, 1, bl.calls)
}

func TestStartSchedulerRejectsBadSpec(t *testing.T) {
	_, err := StartScheduler(context.Background(), "not a cron", Jobs{Auditor: &fakeAuditor{}}, logger.Nop())
	assert.Error(t, err)

	c, err := StartScheduler(context.Background(), "0 3 * * *", Jobs{Auditor: &fakeAuditor{}, OTPs: &fakePurger{}}, logger.Nop())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
	<-c.Stop().Done()
}
