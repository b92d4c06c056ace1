package engine

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"

	"StrengthRadar/pkg/model"
)

// DefaultScoreThreshold 进入推荐名单的最低分数
const DefaultScoreThreshold = 6

// Scorer 推荐评分
type Scorer struct {
	rules     []Rule
	threshold int
	logger    arbor.ILogger
}

// NewScorer 使用默认规则集创建评分器，threshold <= 0 时使用 DefaultScoreThreshold
func NewScorer(threshold int) *Scorer {
	return NewScorerWithRules(DefaultRules(), threshold)
}

// NewScorerWithRules 自定义规则集
func NewScorerWithRules(rules []Rule, threshold int) *Scorer {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	return &Scorer{rules: rules, threshold: threshold}
}

// WithLogger 设置日志，逐条记录规则命中情况
func (s *Scorer) WithLogger(logger arbor.ILogger) *Scorer {
	s.logger = logger
	return s
}

// Threshold 当前门槛
func (s *Scorer) Threshold() int {
	return s.threshold
}

// Score 依规则顺序累加分数，理由顺序与规则顺序一致
func (s *Scorer) Score(c model.StrongCandidate) (int, []string) {
	score := 0
	reasons := make([]string, 0, len(s.rules))
	for _, rule := range s.rules {
		res := rule.Evaluate(c)
		if s.logger != nil {
			s.logger.Debug().Str("code", c.Code).Str("rule", rule.Name()).Str("passed", fmt.Sprint(res.Passed)).Int("weight", res.Weight).Msg("规则评估")
		}
		if !res.Passed {
			continue
		}
		score += res.Weight
		reasons = append(reasons, res.Label)
	}
	return score, reasons
}

// Recommend 分数达到门槛的强势股，依分数降序，其次 alpha 降序，最后代码升序
//
// 只评估跑赢大盘的候选股，因此第一条理由必为 alpha 说明。
func (s *Scorer) Recommend(candidates []model.StrongCandidate) []model.RecommendationRecord {
	out := make([]model.RecommendationRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.Alpha <= 0 {
			continue
		}
		score, reasons := s.Score(c)
		if score < s.threshold {
			continue
		}
		out = append(out, model.RecommendationRecord{
			Code:      c.Code,
			Name:      c.Name,
			Price:     c.Price,
			ChangePct: c.ChangePct,
			Alpha:     c.Alpha,
			Volume:    c.Volume,
			Market:    c.Market,
			Score:     score,
			Reasons:   reasons,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Alpha != b.Alpha {
			return a.Alpha > b.Alpha
		}
		return a.Code < b.Code
	})
	return out
}
