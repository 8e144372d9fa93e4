package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/models"
	"github.com/langchou/evcompare/internal/monitoring"
	"github.com/langchou/evcompare/internal/state"
)

// SourceDefault 使用配置的默认价格时的来源标识
const SourceDefault = "default"

// ErrNoPriceSource 未配置价格来源，只能使用默认价格
var ErrNoPriceSource = errors.New("no price source configured")

// PriceFetcher 参考价格来源
type PriceFetcher interface {
	Fetch(ctx context.Context) (models.PriceTable, error)
	IsConfigured() bool
	Source() string
	ClearCache()
}

// SnapshotStore 价格快照存储
type SnapshotStore interface {
	Insert(ctx context.Context, s *models.PriceSnapshot) error
	Latest(ctx context.Context) (*models.PriceSnapshot, error)
}

// PriceFeedConfig 价格源配置
type PriceFeedConfig struct {
	Defaults        models.PriceTable
	RefreshInterval time.Duration
	StaleAfter      time.Duration
	BackoffInitial  time.Duration
}

// PriceQuote 当前生效的参考价格
type PriceQuote struct {
	Prices    models.PriceTable `json:"prices"`
	State     string            `json:"state"`
	Source    string            `json:"source"`
	FetchedAt *time.Time        `json:"fetched_at,omitempty"`
	Feed      state.FeedState   `json:"feed"`
}

// PriceFeed 参考价格刷新服务
type PriceFeed struct {
	cfg         PriceFeedConfig
	logger      *zap.Logger
	fetcher     PriceFetcher
	store       SnapshotStore // 可为 nil
	machine     *state.Machine

	mu          sync.RWMutex
	last        *models.PriceSnapshot
	stopCh      chan struct{}
	wg          sync.WaitGroup
	running     bool
	subscribers []chan PriceQuote
	interval    time.Duration
}

// NewPriceFeed 创建价格源服务
func NewPriceFeed(cfg PriceFeedConfig, logger *zap.Logger, fetcher PriceFetcher, store SnapshotStore) *PriceFeed {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 6 * time.Hour
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 48 * time.Hour
	}
	if cfg.BackoffInitial <= 0 || cfg.BackoffInitial > cfg.RefreshInterval {
		cfg.BackoffInitial = min(time.Minute, cfg.RefreshInterval)
	}

	f := &PriceFeed{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		store:    store,
		stopCh:   make(chan struct{}),
		interval: cfg.RefreshInterval,
	}
	f.machine = state.NewMachine(f.onStateChange)
	monitoring.SetPriceFeedState(state.StateFallback, state.StateFallback, state.StateLive, state.StateStale)
	monitoring.SetReferencePrices(cfg.Defaults.PetrolPerLiter, cfg.Defaults.DieselPerLiter, cfg.Defaults.ElectricPerKWh)
	return f
}

// Start 恢复最近的快照并启动刷新循环
func (f *PriceFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.stopCh = make(chan struct{})
	f.running = true
	f.mu.Unlock()

	f.restore(ctx)

	if f.fetcher == nil || !f.fetcher.IsConfigured() {
		f.logger.Info("No price source configured, using default prices",
			zap.Float64("petrol", f.cfg.Defaults.PetrolPerLiter),
			zap.Float64("diesel", f.cfg.Defaults.DieselPerLiter),
			zap.Float64("electricity", f.cfg.Defaults.ElectricPerKWh))
		return nil
	}

	f.wg.Add(1)
	go f.refreshLoop(ctx)

	f.logger.Info("Price feed started",
		zap.String("source", f.fetcher.Source()),
		zap.Duration("interval", f.cfg.RefreshInterval))
	return nil
}

// Stop 停止刷新循环
func (f *PriceFeed) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	f.mu.Unlock()

	close(f.stopCh)
	f.wg.Wait()
	f.logger.Info("Price feed stopped")
}

// restore 从存储恢复未过期的快照
func (f *PriceFeed) restore(ctx context.Context) {
	if f.store == nil {
		return
	}
	snap, err := f.store.Latest(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNoPriceData) {
			f.logger.Warn("Failed to load latest price snapshot", zap.Error(err))
		}
		return
	}
	if time.Since(snap.FetchedAt) >= f.cfg.StaleAfter {
		f.logger.Info("Latest price snapshot expired, ignoring", zap.Time("fetched_at", snap.FetchedAt))
		return
	}

	f.mu.Lock()
	f.last = snap
	f.mu.Unlock()
	if err := f.machine.Succeeded(snap.FetchedAt); err != nil {
		f.logger.Warn("Failed to restore price feed state", zap.Error(err))
	}
	monitoring.SetReferencePrices(snap.Prices.PetrolPerLiter, snap.Prices.DieselPerLiter, snap.Prices.ElectricPerKWh)
	f.logger.Info("Restored price snapshot", zap.String("id", snap.ID), zap.Time("fetched_at", snap.FetchedAt))
}

func (f *PriceFeed) refreshLoop(ctx context.Context) {
	defer f.wg.Done()

	if _, err := f.Refresh(ctx); err != nil {
		f.logger.Warn("Initial price fetch failed", zap.Error(err))
	}

	timer := time.NewTimer(f.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			if _, err := f.Refresh(ctx); err != nil {
				f.logger.Warn("Price fetch failed", zap.Error(err), zap.Duration("retry_in", f.nextInterval()))
			}
			timer.Reset(f.nextInterval())
		}
	}
}

func (f *PriceFeed) nextInterval() time.Duration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.interval
}

// applyBackoff 失败后指数退避，不超过正常刷新间隔
func (f *PriceFeed) applyBackoff() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.interval >= f.cfg.RefreshInterval {
		f.interval = f.cfg.BackoffInitial
		return
	}
	f.interval = min(f.interval*2, f.cfg.RefreshInterval)
}

func (f *PriceFeed) resetBackoff() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = f.cfg.RefreshInterval
}

// Refresh 立即抓取一次参考价格
func (f *PriceFeed) Refresh(ctx context.Context) (PriceQuote, error) {
	if f.fetcher == nil || !f.fetcher.IsConfigured() {
		return f.Current(), ErrNoPriceSource
	}

	before := f.Current()
	start := time.Now()
	prices, err := f.fetcher.Fetch(ctx)
	monitoring.RecordPriceFetch(time.Since(start), err == nil)

	if err != nil {
		f.applyBackoff()
		if ferr := f.machine.Failed(err); ferr != nil {
			f.logger.Error("Failed to record price fetch failure", zap.Error(ferr))
		}
		if expired, xerr := f.machine.Expire(time.Now(), f.cfg.StaleAfter); xerr != nil {
			f.logger.Error("Failed to expire price snapshot", zap.Error(xerr))
		} else if expired {
			f.mu.Lock()
			f.last = nil
			f.mu.Unlock()
			d := f.cfg.Defaults
			monitoring.SetReferencePrices(d.PetrolPerLiter, d.DieselPerLiter, d.ElectricPerKWh)
		}
		quote := f.Current()
		f.publishIfChanged(before, quote)
		return quote, fmt.Errorf("fetch reference prices: %w", err)
	}

	f.resetBackoff()
	snap := &models.PriceSnapshot{
		Source:    f.fetcher.Source(),
		Prices:    prices,
		FetchedAt: time.Now(),
	}
	if f.store != nil {
		if err := f.store.Insert(ctx, snap); err != nil {
			f.logger.Error("Failed to save price snapshot", zap.Error(err))
		}
	}

	f.mu.Lock()
	f.last = snap
	f.mu.Unlock()
	if err := f.machine.Succeeded(snap.FetchedAt); err != nil {
		f.logger.Error("Failed to record price fetch", zap.Error(err))
	}
	monitoring.SetReferencePrices(prices.PetrolPerLiter, prices.DieselPerLiter, prices.ElectricPerKWh)

	quote := f.Current()
	f.publishIfChanged(before, quote)
	return quote, nil
}

// ForceRefresh 清空抓取缓存后刷新
func (f *PriceFeed) ForceRefresh(ctx context.Context) (PriceQuote, error) {
	if f.fetcher != nil {
		f.fetcher.ClearCache()
	}
	return f.Refresh(ctx)
}

// Current 当前生效的价格：live/stale 使用最近一次抓取，fallback 使用默认值
func (f *PriceFeed) Current() PriceQuote {
	feed := f.machine.GetState()

	f.mu.RLock()
	last := f.last
	f.mu.RUnlock()

	if feed.CurrentState == state.StateFallback || last == nil {
		return PriceQuote{
			Prices: f.cfg.Defaults,
			State:  state.StateFallback,
			Source: SourceDefault,
			Feed:   feed,
		}
	}

	fetchedAt := last.FetchedAt
	return PriceQuote{
		Prices:    last.Prices,
		State:     feed.CurrentState,
		Source:    last.Source,
		FetchedAt: &fetchedAt,
		Feed:      feed,
	}
}

// Subscribe 订阅价格变化，慢消费者会丢失更新
func (f *PriceFeed) Subscribe() <-chan PriceQuote {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan PriceQuote, 4)
	f.subscribers = append(f.subscribers, ch)
	return ch
}

func (f *PriceFeed) publishIfChanged(before, after PriceQuote) {
	if before.State == after.State && before.Prices == after.Prices && before.Source == after.Source {
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subscribers {
		select {
		case ch <- after:
		default:
			// 跳过慢消费者
		}
	}
	f.logger.Debug("Published price update", zap.String("state", after.State), zap.Int("subscribers", len(f.subscribers)))
}

// onStateChange 状态变化回调，在状态机锁内执行
func (f *PriceFeed) onStateChange(from, to string) {
	f.logger.Info("Price feed state changed", zap.String("from", from), zap.String("to", to))
	monitoring.SetPriceFeedState(to, state.StateFallback, state.StateLive, state.StateStale)
}
