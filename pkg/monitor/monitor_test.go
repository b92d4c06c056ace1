package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_StatusTransitions(t *testing.T) {
	var (
		mu     sync.Mutex
		alerts []string
	)
	m := NewMonitor(func(component, status, message string) {
		mu.Lock()
		defer mu.Unlock()
		alerts = append(alerts, component+":"+status)
	})

	m.RegisterComponent("catalog")
	s, ok := m.GetStatus("catalog")
	require.True(t, ok)
	assert.Equal(t, StatusUnknown, s.Status)
	assert.True(t, m.Ready())

	m.Report("catalog", errors.New("file missing"), StatusUnhealthy)
	s, _ = m.GetStatus("catalog")
	assert.Equal(t, StatusUnhealthy, s.Status)
	assert.Equal(t, "file missing", s.Message)
	assert.False(t, m.Ready())

	// 同一状态不重复告警
	m.Report("catalog", errors.New("file missing"), StatusUnhealthy)
	m.Report("catalog", nil, StatusUnhealthy)
	assert.True(t, m.Ready())

	m.UpdateStatus("benchmark", StatusDegraded, "zero quote")
	assert.True(t, m.Ready(), "degraded is still ready")

	assert.Equal(t, []string{"catalog:unhealthy", "benchmark:degraded"}, alerts)

	all := m.GetAllStatus()
	require.Len(t, all, 2)
	assert.Equal(t, "benchmark", all[0].Component)
	assert.Equal(t, "catalog", all[1].Component)

	_, ok = m.GetStatus("missing")
	assert.False(t, ok)
}

func TestMonitor_StartChecking(t *testing.T) {
	m := NewMonitor(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.StartChecking(ctx, "database", func(context.Context) error {
		return errors.New("down")
	}, time.Hour)

	require.Eventually(t, func() bool {
		s, _ := m.GetStatus("database")
		return s.Status == StatusUnhealthy
	}, time.Second, 10*time.Millisecond)
}
