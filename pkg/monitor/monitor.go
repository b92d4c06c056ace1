package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// 组件状态
const (
	StatusUnknown   = "unknown"
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus 健康状态
type HealthStatus struct {
	Component   string    `json:"component"`
	Status      string    `json:"status"`
	LastChecked time.Time `json:"last_checked"`
	Message     string    `json:"message,omitempty"`
}

// Monitor 组件健康监控，由管道各阶段回报状态
type Monitor struct {
	components map[string]*HealthStatus
	mutex      sync.RWMutex
	alertFunc  func(component, status, message string)
	now        func() time.Time
}

// NewMonitor 创建新的监控系统
func NewMonitor(alertFunc func(component, status, message string)) *Monitor {
	return &Monitor{
		components: make(map[string]*HealthStatus),
		alertFunc:  alertFunc,
		now:        time.Now,
	}
}

// RegisterComponent 注册组件
func (m *Monitor) RegisterComponent(component string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.components[component]; exists {
		return
	}
	m.components[component] = &HealthStatus{
		Component:   component,
		Status:      StatusUnknown,
		LastChecked: m.now(),
	}
}

// UpdateStatus 更新组件状态，状态变为非健康时触发告警
func (m *Monitor) UpdateStatus(component, status, message string) {
	m.mutex.Lock()
	current, exists := m.components[component]
	if !exists {
		current = &HealthStatus{Component: component}
		m.components[component] = current
	}

	oldStatus := current.Status
	current.Status = status
	current.LastChecked = m.now()
	current.Message = message
	m.mutex.Unlock()

	if oldStatus != status && status != StatusHealthy && m.alertFunc != nil {
		m.alertFunc(component, status, message)
	}
}

// Report 以错误更新状态：nil 为健康，否则为 fallback 指定的状态
func (m *Monitor) Report(component string, err error, fallback string) {
	if err == nil {
		m.UpdateStatus(component, StatusHealthy, "")
		return
	}
	m.UpdateStatus(component, fallback, err.Error())
}

// GetStatus 获取组件状态副本
func (m *Monitor) GetStatus(component string) (HealthStatus, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if status, exists := m.components[component]; exists {
		return *status, true
	}
	return HealthStatus{}, false
}

// GetAllStatus 获取所有组件状态，依组件名排序
func (m *Monitor) GetAllStatus() []HealthStatus {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	statuses := make([]HealthStatus, 0, len(m.components))
	for _, status := range m.components {
		statuses = append(statuses, *status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Component < statuses[j].Component
	})
	return statuses
}

// Ready 没有任何组件处于 unhealthy 时为就绪
func (m *Monitor) Ready() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, status := range m.components {
		if status.Status == StatusUnhealthy {
			return false
		}
	}
	return true
}

// Check 执行一次探测并更新状态
func (m *Monitor) Check(ctx context.Context, component string, probe func(context.Context) error) {
	if err := probe(ctx); err != nil {
		m.UpdateStatus(component, StatusUnhealthy, fmt.Sprintf("探测失败: %v", err))
		return
	}
	m.UpdateStatus(component, StatusHealthy, "")
}

// StartChecking 定期探测，ctx 结束时停止
func (m *Monitor) StartChecking(ctx context.Context, component string, probe func(context.Context) error, interval time.Duration) {
	m.RegisterComponent(component)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		m.Check(ctx, component, probe)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx, component, probe)
			}
		}
	}()
}
