package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/config"
	"StrengthRadar/pkg/messaging"
	"StrengthRadar/pkg/model"
)

// SnapshotSource 定时任务取得快照的来源
type SnapshotSource interface {
	GetOrBuild(ctx context.Context, criteria model.FilterCriteria) (*model.PipelineSnapshot, error)
}

// Options 定时推送参数
type Options struct {
	PushCron string
	TopN     int
	Subject  string
	Criteria model.FilterCriteria
	Timeout  time.Duration
	Location *time.Location
}

// OptionsFromConfig 由配置生成推送参数
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PushCron: cfg.Scheduler.PushCron,
		TopN:     cfg.Scheduler.TopN,
		Subject:  cfg.NATS.Subject,
		Criteria: CriteriaFromConfig(cfg.Scheduler.Criteria),
		Timeout:  5 * time.Minute,
		Location: time.FixedZone("Asia/Taipei", 8*3600),
	}
}

// CriteriaFromConfig 配置中的条件转为筛选条件
func CriteriaFromConfig(c config.CriteriaConfig) model.FilterCriteria {
	return model.FilterCriteria{
		MinPrice:      c.MinPrice,
		MaxPrice:      c.MaxPrice,
		MinMarketCap:  c.MinMarketCap,
		MinVolumeLots: c.MinVolumeLots,
	}
}

// Scheduler 任务调度器
type Scheduler struct {
	cron      *cron.Cron
	snapshots SnapshotSource
	publisher messaging.Publisher
	logger    arbor.ILogger
	opts      Options
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler 创建任务调度器
func NewScheduler(snapshots SnapshotSource, publisher messaging.Publisher, logger arbor.ILogger, opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Start 启动调度器
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.opts.PushCron, func() {
		if _, err := s.RunOnce(ctx); err != nil && s.logger != nil {
			s.logger.Error().Err(err).Msg("定时推送失败")
		}
	})
	if err != nil {
		return fmt.Errorf("注册定时推送 %q 失败: %w", s.opts.PushCron, err)
	}

	s.cron.Start()
	if s.logger != nil {
		s.logger.Info().Str("cron", s.opts.PushCron).Int("top_n", s.opts.TopN).Msg("调度器已启动")
	}
	return nil
}

// Stop 停止调度器，等待执行中的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 取得快照并推送前 N 个推荐
//
// 上一次推送仍在执行时直接跳过。没有推荐时不推送，回传的批次为空。
func (s *Scheduler) RunOnce(ctx context.Context) (messaging.RecommendationBatch, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn().Msg("上一次推送尚未完成，跳过")
		}
		return messaging.RecommendationBatch{}, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	snap, err := s.snapshots.GetOrBuild(runCtx, s.opts.Criteria)
	if err != nil {
		return messaging.RecommendationBatch{}, fmt.Errorf("取得快照失败: %w", err)
	}

	batch := messaging.NewRecommendationBatch(snap, s.opts.TopN, s.now())
	if batch.Empty() {
		if s.logger != nil {
			s.logger.Info().Str("snapshot", snap.ID).Msg("没有符合条件的推荐，不推送")
		}
		return batch, nil
	}

	if err := s.publisher.Publish(runCtx, s.opts.Subject, batch); err != nil {
		return batch, fmt.Errorf("推送推荐失败: %w", err)
	}

	if s.logger != nil {
		s.logger.Info().
			Str("batch", batch.ID).
			Str("snapshot", snap.ID).
			Int("count", len(batch.Recommendations)).
			Msg("推荐已推送")
	}
	return batch, nil
}
