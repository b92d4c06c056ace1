package engine

import (
	"context"
	"sync/atomic"

	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/model"
)

// Builder 执行一次完整重建
type Builder interface {
	Build(ctx context.Context, criteria model.FilterCriteria) (*model.PipelineSnapshot, error)
}

// SnapshotCache 持有唯一的当前快照
//
// 读取无锁；重建串行化：等待中的请求取得重建权后会重新比对条件，
// 与刚完成的快照条件相同时直接沿用。重建产生全新实例后才替换引用，
// 已被读取者持有的旧快照保持不变。重建失败不替换当前快照。
type SnapshotCache struct {
	builder Builder
	logger  arbor.ILogger
	current atomic.Pointer[model.PipelineSnapshot]
	sem     chan struct{}
	builds  atomic.Int64
}

// NewSnapshotCache 创建快照缓存
func NewSnapshotCache(builder Builder, logger arbor.ILogger) *SnapshotCache {
	return &SnapshotCache{
		builder: builder,
		logger:  logger,
		sem:     make(chan struct{}, 1),
	}
}

// Current 当前快照，尚未建立时为 nil
func (c *SnapshotCache) Current() *model.PipelineSnapshot {
	return c.current.Load()
}

// Builds 累计重建次数
func (c *SnapshotCache) Builds() int64 {
	return c.builds.Load()
}

// GetOrBuild 四个主要数值条件与当前快照相同时直接返回，否则重建
//
// 条件不合法时在任何抓取前返回 model.ErrInvalidCriteria。
func (c *SnapshotCache) GetOrBuild(ctx context.Context, criteria model.FilterCriteria) (*model.PipelineSnapshot, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if snap := c.reusable(criteria); snap != nil {
		return snap, nil
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	if snap := c.reusable(criteria); snap != nil {
		return snap, nil
	}

	// 调用方 ctx 只用于等待重建权，重建不随请求取消；各阶段抓取仍受单次请求超时约束
	snap, err := c.builder.Build(context.WithoutCancel(ctx), criteria)
	if err != nil {
		return nil, err
	}
	c.builds.Add(1)
	c.current.Store(snap)

	if c.logger != nil {
		c.logger.Debug().Str("snapshot", snap.ID).Int64("builds", c.builds.Load()).Msg("快照已替换")
	}
	return snap, nil
}

func (c *SnapshotCache) reusable(criteria model.FilterCriteria) *model.PipelineSnapshot {
	snap := c.current.Load()
	if snap != nil && snap.Criteria.SameKey(criteria) {
		return snap
	}
	return nil
}
