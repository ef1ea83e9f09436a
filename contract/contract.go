// Package contract is the staking ledger's dispatcher. It routes instantiate,
// execute and query calls to their handlers, runs every state change in a
// single store transaction and reports the outcome as a Response carrying
// outgoing instructions and events.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bitfsorg/libstake-go/config"
	"github.com/bitfsorg/libstake-go/ledger"
	"github.com/bitfsorg/libstake-go/logging"
	"github.com/bitfsorg/libstake-go/store"
	"github.com/bitfsorg/libstake-go/tokensvc"
)

// Contract owns the ledger state and the token-service capability used by queries.
type Contract struct {
	store   store.Store
	tokens  tokensvc.Service // optional; nil skips external enrichment
	log     *zap.Logger
	metrics *Metrics

	metricsLn net.Listener   // set by Open when MetricsAddr is configured
	closers   []func() error // run by Close in reverse order
}

// Option customizes a Contract.
type Option func(*Contract)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Contract) { c.metrics = m }
}

// New creates a dispatcher over s. tokens may be nil.
func New(s store.Store, tokens tokensvc.Service, opts ...Option) *Contract {
	c := &Contract{
		store:  s,
		tokens: tokens,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open builds a Contract from host configuration: the bbolt store under
// cfg.DataDir, a zap logger and, when reg is non-nil or cfg.MetricsAddr is set,
// Prometheus metrics served on cfg.MetricsAddr.
//
// When tokens is nil the token endpoint is resolved from cfg.TokenURL, then
// STAKE_TOKEN_URL, then the network preset. With none available the ledger runs
// without live token data.
func Open(cfg config.Config, tokens tokensvc.Service, reg prometheus.Registerer) (*Contract, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("contract: build logger: %w", err)
	}

	if tokens == nil {
		flags := &tokensvc.Config{URL: cfg.TokenURL, Timeout: cfg.TokenTimeout}
		tcfg, err := tokensvc.ResolveConfig(flags, tokenEnv(), cfg.Network)
		switch {
		case err == nil:
			tokens = tokensvc.NewClient(*tcfg)
		case errors.Is(err, tokensvc.ErrNotConfigured):
			logger.Warn("no token service endpoint", zap.String("network", cfg.Network))
		default:
			return nil, fmt.Errorf("contract: %w", err)
		}
	}

	s, err := store.OpenBoltStore(filepath.Join(cfg.DataDir, "stake.db"))
	if err != nil {
		return nil, fmt.Errorf("contract: %w", err)
	}
	c := New(s, tokens, WithLogger(logger))

	if reg == nil && cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
	}
	if reg != nil {
		m, err := NewMetrics(reg)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("contract: register metrics: %w", err)
		}
		c.metrics = m
		c.closers = append(c.closers, func() error { m.unregister(); return nil })

		if cfg.MetricsAddr != "" {
			if err := c.serveMetrics(cfg.MetricsAddr, reg); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("contract: metrics listener: %w", err)
			}
		}
	}

	logger.Info("ledger opened",
		zap.String("datadir", cfg.DataDir),
		zap.Bool("token_service", tokens != nil),
		zap.String("metrics_addr", c.MetricsAddr()))
	return c, nil
}

// tokenEnv collects the token service overrides from the process environment.
func tokenEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range []string{"STAKE_TOKEN_URL", "STAKE_TOKEN_TIMEOUT"} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

// Close stops the metrics listener, releases what Open registered and closes the store.
func (c *Contract) Close() error {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
	c.closers = nil
	c.metricsLn = nil
	_ = c.log.Sync()
	return c.store.Close()
}

// execution carries the state of a single execute call.
type execution struct {
	tx   store.Tx
	env  Env
	info MessageInfo

	// written during the call, published to metrics after commit
	config      *ledger.Config
	collections []*ledger.Collection
	fields      []zap.Field
}

func (x *execution) touchConfig(cfg *ledger.Config) {
	x.config = cfg
}

func (x *execution) touchCollection(coll *ledger.Collection) {
	x.collections = append(x.collections, coll)
}

func (x *execution) logWith(fields ...zap.Field) {
	x.fields = append(x.fields, fields...)
}

// Instantiate writes the initial config. The sender becomes the owner.
func (c *Contract) Instantiate(env Env, info MessageInfo, msg InstantiateMsg) (*Response, error) {
	resp, err := c.instantiate(env, info, msg)
	c.metrics.observeCall("instantiate", err)
	if err != nil {
		c.log.Debug("instantiate rejected", zap.String("sender", info.Sender), zap.Error(err))
		return nil, err
	}
	c.log.Info("ledger instantiated", zap.String("owner", info.Sender))
	return resp, nil
}

func (c *Contract) instantiate(_ Env, info MessageInfo, msg InstantiateMsg) (*Response, error) {
	if err := ledger.ValidateIdentity(info.Sender); err != nil {
		return nil, err
	}
	var fee ledger.Coin
	if msg.UnstakeFee != nil {
		fee = *msg.UnstakeFee
		if err := validateFee(fee); err != nil {
			return nil, err
		}
	}

	cfg := &ledger.Config{Owner: info.Sender, UnstakeFee: fee}
	err := c.store.Update(func(tx store.Tx) error {
		if _, err := tx.Config(); err == nil {
			return store.ErrAlreadyInitialized
		} else if !errors.Is(err, store.ErrConfigNotFound) {
			return err
		}
		return tx.PutConfig(cfg)
	})
	if err != nil {
		return nil, err
	}
	c.metrics.setConfig(cfg)

	resp := newResponse("instantiate")
	resp.addEvent(newEvent("instantiate").
		add("owner", cfg.Owner).
		add("unstake_fee", cfg.UnstakeFee.String()))
	return resp, nil
}

// Execute runs msg in one store transaction. On error nothing is written.
func (c *Contract) Execute(env Env, info MessageInfo, msg ExecuteMsg) (*Response, error) {
	op := "unknown"
	if msg != nil {
		op = msg.executeMsg()
	}

	var resp *Response
	x := &execution{env: env, info: info}
	err := c.store.Update(func(tx store.Tx) error {
		x.tx = tx
		var err error
		resp, err = c.dispatch(x, msg)
		return err
	})
	c.metrics.observeCall(op, err)
	if err != nil {
		c.log.Debug("execute rejected",
			zap.String("op", op), zap.String("sender", info.Sender), zap.Error(err))
		return nil, err
	}

	c.metrics.setConfig(x.config)
	for _, coll := range x.collections {
		c.metrics.setCollection(coll)
	}
	c.log.Info("execute committed", append([]zap.Field{
		zap.String("op", op), zap.String("sender", info.Sender),
	}, x.fields...)...)
	return resp, nil
}

// ExecuteJSON decodes a tagged execute message and runs it.
func (c *Contract) ExecuteJSON(env Env, info MessageInfo, data []byte) (*Response, error) {
	msg, err := DecodeExecuteMsg(data)
	if err != nil {
		c.metrics.observeCall("unknown", err)
		return nil, err
	}
	return c.Execute(env, info, msg)
}

func (c *Contract) dispatch(x *execution, msg ExecuteMsg) (*Response, error) {
	switch m := msg.(type) {
	case TransferOwnership:
		return c.transferOwnership(x, m)
	case ChangeFee:
		return c.changeFee(x, m)
	case WhitelistCollection:
		return c.whitelistCollection(x, m)
	case DepositCollectionReward:
		return c.depositReward(x, m)
	case ReceiveNft:
		return c.stake(x, m)
	case Unstake:
		return c.unstake(x, m)
	case ClaimReward:
		return c.claim(x, m)
	case WithdrawFee:
		return c.withdrawFee(x, m)
	default:
		return nil, fmt.Errorf("%w: execute %T", ledger.ErrUnknown, msg)
	}
}

// Query answers msg and returns the JSON encoding of its response type.
func (c *Contract) Query(ctx context.Context, msg QueryMsg) ([]byte, error) {
	var (
		result interface{}
		err    error
	)
	switch m := msg.(type) {
	case GetConfig:
		result, err = c.GetConfig()
	case GetCollections:
		result, err = c.GetCollections(ctx)
	case GetStakingsByOwner:
		result, err = c.GetStakingsByOwner(m.Owner)
	case GetStaking:
		result, err = c.GetStaking(m.Index)
	case GetAllCollectionTokensByOwner:
		result, err = c.GetAllCollectionTokensByOwner(ctx, m.Owner)
	default:
		return nil, fmt.Errorf("%w: query %T", ledger.ErrUnknown, msg)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// QueryJSON decodes a tagged query and answers it.
func (c *Contract) QueryJSON(ctx context.Context, data []byte) ([]byte, error) {
	msg, err := DecodeQueryMsg(data)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, msg)
}

// nonPayable rejects funds attached to an entry point that cannot hold them.
func nonPayable(info MessageInfo) error {
	if len(info.Funds) > 0 {
		return fmt.Errorf("%w: unexpected funds %s", ledger.ErrUnknown, ledger.FormatCoins(info.Funds))
	}
	return nil
}

// validateFee rejects a priced fee without a denomination.
func validateFee(fee ledger.Coin) error {
	if !fee.IsZero() && fee.Denom == "" {
		return fmt.Errorf("%w: fee %d has no denomination", ledger.ErrUnknown, fee.Amount)
	}
	return nil
}
