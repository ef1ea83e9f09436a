package contract

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/store"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c := newTestContract(t, WithMetrics(m))
	fee := ledger.NewCoin(5, "inj")
	setup(t, c, &fee, 100, 40)

	id := stakeAt(t, c, 10, testStaker, "0")
	stakeAt(t, c, 11, testStaker, "1")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.activeStakes.WithLabelValues(testCollection)))

	_, err = execAt(c, 20, testStaker, nil, Unstake{Index: id})
	assert.ErrorIs(t, err, ledger.ErrNotEnoughUnstakeFee)
	_, err = execAt(c, 20, testStaker, []ledger.Coin{fee}, Unstake{Index: id})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("instantiate", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.calls.WithLabelValues("receive_nft", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("unstake", "insufficient_fee")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("unstake", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.activeStakes.WithLabelValues(testCollection)))
	assert.Equal(t, float64(40), testutil.ToFloat64(m.poolAmount.WithLabelValues(testCollection)))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.feeCollected))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "locked", resultLabel(ledger.ErrLocked))
	assert.Equal(t, "wrong_index", resultLabel(ledger.ErrWrongIndex))
	assert.Equal(t, "error", resultLabel(store.ErrConfigNotFound))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := newTestContract(t, WithLogger(zap.New(core)))
	setup(t, c, nil, 0, 0)

	stakeAt(t, c, 1, testStaker, "0")
	_, err := execAt(c, 2, testStaker, nil, ClaimReward{Index: 0})
	require.Error(t, err)

	committed := logs.FilterMessage("execute committed").FilterField(zap.String("op", "receive_nft")).All()
	require.Len(t, committed, 1)
	assert.Equal(t, zapcore.InfoLevel, committed[0].Level)
	fields := committed[0].ContextMap()
	assert.Equal(t, testStaker, fields["staker"])
	assert.Equal(t, uint64(0), fields["staking_id"])

	rejected := logs.FilterMessage("execute rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, zapcore.DebugLevel, rejected[0].Level)
	assert.Equal(t, "claim_reward", rejected[0].ContextMap()["op"])
}

func TestNewMetrics_FailureLeavesNothingRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	squatter := prometheus.NewGauge(prometheus.GaugeOpts{Name: "stake_fee_collected", Help: "taken"})
	require.NoError(t, reg.Register(squatter))

	_, err := NewMetrics(reg)
	require.Error(t, err)

	require.True(t, reg.Unregister(squatter))
	_, err = NewMetrics(reg)
	assert.NoError(t, err)
}
