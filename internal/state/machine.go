package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// 价格源状态常量
const (
	StateFallback = "fallback" // 使用配置的默认价格
	StateLive     = "live"     // 最近一次抓取成功
	StateStale    = "stale"    // 抓取失败，仍沿用上次成功的价格
)

// 事件常量
const (
	EventFetchSucceeded = "fetch_succeeded"
	EventFetchFailed    = "fetch_failed"
	EventExpire         = "expire"
)

// FeedState 价格源状态
type FeedState struct {
	CurrentState string    `json:"state"`
	Since        time.Time `json:"since"`
	LastSuccess  time.Time `json:"last_success,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	Failures     int       `json:"consecutive_failures"`
}

// Machine 价格源状态机
type Machine struct {
	mu            sync.RWMutex
	fsm           *fsm.FSM
	state         *FeedState
	onStateChange func(from, to string)
}

// NewMachine 创建状态机
func NewMachine(onStateChange func(from, to string)) *Machine {
	m := &Machine{
		onStateChange: onStateChange,
		state: &FeedState{
			CurrentState: StateFallback,
			Since:        time.Now(),
		},
	}

	m.fsm = fsm.NewFSM(
		StateFallback,
		fsm.Events{
			{Name: EventFetchSucceeded, Src: []string{StateFallback, StateLive, StateStale}, Dst: StateLive},
			{Name: EventFetchFailed, Src: []string{StateLive}, Dst: StateStale},
			{Name: EventExpire, Src: []string{StateStale}, Dst: StateFallback},
		},
		fsm.Callbacks{
			"after_event": func(ctx context.Context, e *fsm.Event) {
				if m.onStateChange != nil && e.Src != e.Dst {
					m.onStateChange(e.Src, e.Dst)
				}
			},
		},
	)

	return m
}

// CurrentState 获取当前状态
func (m *Machine) CurrentState() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// GetState 获取完整状态
func (m *Machine) GetState() FeedState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := *m.state
	s.CurrentState = m.fsm.Current()
	return s
}

// Succeeded 记录一次成功抓取
func (m *Machine) Succeeded(at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastSuccess = at
	m.state.LastError = ""
	m.state.Failures = 0
	return m.trigger(EventFetchSucceeded)
}

// Failed 记录一次失败抓取。fallback 状态下只累计失败次数
func (m *Machine) Failed(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Failures++
	if err != nil {
		m.state.LastError = err.Error()
	}
	if !m.fsm.Can(EventFetchFailed) {
		return nil
	}
	return m.trigger(EventFetchFailed)
}

// Expire 上次成功抓取早于 now-staleAfter 时退回默认价格
func (m *Machine) Expire(now time.Time, staleAfter time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fsm.Can(EventExpire) || now.Sub(m.state.LastSuccess) < staleAfter {
		return false, nil
	}
	return true, m.trigger(EventExpire)
}

func (m *Machine) trigger(event string) error {
	if err := m.fsm.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return nil
		}
		return fmt.Errorf("trigger event %s: %w", event, err)
	}

	m.state.CurrentState = m.fsm.Current()
	m.state.Since = time.Now()
	return nil
}
