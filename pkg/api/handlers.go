package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/engine"
	"StrengthRadar/pkg/model"
	"StrengthRadar/pkg/monitor"
)

// SnapshotProvider 快照来源
type SnapshotProvider interface {
	GetOrBuild(ctx context.Context, criteria model.FilterCriteria) (*model.PipelineSnapshot, error)
}

// IndexFetcher 单独刷新指数
type IndexFetcher interface {
	FetchAll(ctx context.Context) (map[model.MarketSegment]model.BenchmarkQuote, []string)
}

// Handlers API处理程序
type Handlers struct {
	snapshots SnapshotProvider
	indices   IndexFetcher
	monitor   *monitor.Monitor
	logger    arbor.ILogger
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	snapshots SnapshotProvider,
	indices IndexFetcher,
	mon *monitor.Monitor,
	logger arbor.ILogger,
) *Handlers {
	return &Handlers{
		snapshots: snapshots,
		indices:   indices,
		monitor:   mon,
		logger:    logger,
	}
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查：任何组件 unhealthy 时返回 503
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	if h.monitor == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	status, code := "ready", http.StatusOK
	if !h.monitor.Ready() {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"components": h.monitor.GetAllStatus(),
	})
}

// ScreenResponse 基础池与跑赢大盘清单
type ScreenResponse struct {
	SnapshotMeta
	Listed    []StockDTO `json:"listed"`
	OTC       []StockDTO `json:"otc"`
	ListedAll []StockDTO `json:"listed_all"`
	OTCAll    []StockDTO `json:"otc_all"`
	BasePool  []StockDTO `json:"base_pool"`
}

// StrongResponse 强势股清单
type StrongResponse struct {
	SnapshotMeta
	StrongCandidates []StrongDTO `json:"strong_candidates"`
}

// RecommendResponse 推荐清单
type RecommendResponse struct {
	SnapshotMeta
	Recommendations []RecommendationDTO `json:"recommendations"`
}

// Screen 阶层 1~2：基础过滤与跑赢大盘
func (h *Handlers) Screen(c *gin.Context) {
	view, meta, ok := h.view(c)
	if !ok {
		return
	}

	resp := ScreenResponse{
		SnapshotMeta: meta,
		ListedAll:    outperformersDTO(view.Ranked[model.MarketListed]),
		OTCAll:       outperformersDTO(view.Ranked[model.MarketOTC]),
		BasePool:     stocksDTO(view.BasePool),
		Listed:       []StockDTO{},
		OTC:          []StockDTO{},
	}
	for _, r := range view.Outperformers {
		if r.Market == model.MarketOTC {
			resp.OTC = append(resp.OTC, outperformerDTO(r))
		} else {
			resp.Listed = append(resp.Listed, outperformerDTO(r))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Strong 阶层 3：守住实体高点的强势股
func (h *Handlers) Strong(c *gin.Context) {
	view, meta, ok := h.view(c)
	if !ok {
		return
	}

	list := make([]StrongDTO, 0, len(view.StrongCandidates))
	for _, s := range view.StrongCandidates {
		list = append(list, strongDTO(s))
	}
	c.JSON(http.StatusOK, StrongResponse{SnapshotMeta: meta, StrongCandidates: list})
}

// Recommend 阶层 4：评分推荐，可用 ?limit=N 截取前 N 名
func (h *Handlers) Recommend(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "limit 参数必须为非负整数")
			return
		}
		limit = n
	}

	view, meta, ok := h.view(c)
	if !ok {
		return
	}

	recs := view.Recommendations
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	list := make([]RecommendationDTO, 0, len(recs))
	for _, r := range recs {
		list = append(list, recommendationDTO(r))
	}
	c.JSON(http.StatusOK, RecommendResponse{SnapshotMeta: meta, Recommendations: list})
}

// Indices 单独刷新大盘指数，不影响快照
func (h *Handlers) Indices(c *gin.Context) {
	quotes, warnings := h.indices.FetchAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"benchmarks": benchmarksDTO(quotes),
		"warnings":   warnings,
	})
}

// view 解析条件、取得快照并套用开高视图；失败时已写出回应
func (h *Handlers) view(c *gin.Context) (engine.SnapshotView, SnapshotMeta, bool) {
	criteria, err := bindCriteria(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return engine.SnapshotView{}, SnapshotMeta{}, false
	}

	snap, err := h.snapshots.GetOrBuild(c.Request.Context(), criteria)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCriteria):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, engine.ErrCatalogUnavailable):
			// 领域层面的失败，仍以 200 回应
			fail(c, http.StatusOK, "股票目录尚未建立，请先执行目录更新")
		default:
			if h.logger != nil {
				h.logger.Error().Err(err).Msg("快照建立失败")
			}
			fail(c, http.StatusInternalServerError, "快照建立失败: "+err.Error())
		}
		return engine.SnapshotView{}, SnapshotMeta{}, false
	}

	view := engine.NewView(snap, criteria.GapUpOnly)
	return view, metaFor(view, criteria), true
}

func metaFor(view engine.SnapshotView, criteria model.FilterCriteria) SnapshotMeta {
	snap := view.Snapshot
	listed, otc := view.OutperformerCounts()
	return SnapshotMeta{
		Success:    true,
		SnapshotID: snap.ID,
		CreatedAt:  snap.CreatedAt,
		Criteria:   criteria,
		Benchmarks: benchmarksDTO(snap.Benchmarks),
		Stats: StatsDTO{
			TotalAnalyzed:       snap.Stats.TotalAnalyzed,
			TotalFiltered:       len(view.BasePool),
			ListedOutperformers: listed,
			OTCOutperformers:    otc,
			Calibrated:          snap.Stats.Calibrated,
			StrongCount:         len(view.StrongCandidates),
			RecommendationCount: len(view.Recommendations),
			UpdateTime:          snap.Stats.CatalogUpdateTime,
		},
		Warnings: snap.Warnings,
	}
}

// bindCriteria 未提供的字段使用默认条件
func bindCriteria(c *gin.Context) (model.FilterCriteria, error) {
	criteria := model.DefaultCriteria()
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return criteria, nil
	}
	if err := c.ShouldBindJSON(&criteria); err != nil && !errors.Is(err, io.EOF) {
		return criteria, err
	}
	return criteria, nil
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}
