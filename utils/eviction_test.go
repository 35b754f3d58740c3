package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/momentum/ledger"
	"github.com/cppla/momentum/storage"
	"github.com/cppla/momentum/utils"
)

func TestStartLedgerEvictor_DropsIdleLedgers(t *testing.T) {
	reg := ledger.NewRegistry(storage.NewMemoryStore(), ledger.DefaultConfig())
	require.NoError(t, reg.Do(context.Background(), "p1", func(*ledger.Ledger) error { return nil }))
	require.Equal(t, 1, reg.Len())

	c, err := utils.StartLedgerEvictor(reg, "@every 1s", time.Millisecond)
	require.NoError(t, err)
	defer c.Stop()

	assert.Eventually(t, func() bool { return reg.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestStartLedgerEvictor_RejectsBadSchedule(t *testing.T) {
	reg := ledger.NewRegistry(storage.NewMemoryStore(), ledger.DefaultConfig())
	_, err := utils.StartLedgerEvictor(reg, "every so often", time.Minute)
	assert.Error(t, err)
}
