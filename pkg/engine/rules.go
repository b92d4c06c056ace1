package engine

import (
	"fmt"

	"StrengthRadar/pkg/indicator"
	"StrengthRadar/pkg/model"
)

// RuleResult 单一评分规则的结果
type RuleResult struct {
	Passed bool
	Label  string
	Weight int
}

// Rule 评分规则
type Rule interface {
	Name() string
	Evaluate(c model.StrongCandidate) RuleResult
}

// DefaultRules 固定顺序的规则集，第一条必为 alpha 说明
func DefaultRules() []Rule {
	return []Rule{
		OutperformRule{Weight: 2},
		StreakRule{StrongWeight: 5, WeakWeight: 2},
		MAAlignmentRule{Weight: 3},
		RSIBandRule{Low: 55, High: 80, Weight: 2},
	}
}

// OutperformRule 跑赢所属市场指数
type OutperformRule struct {
	Weight int
}

func (OutperformRule) Name() string { return "outperform" }

func (r OutperformRule) Evaluate(c model.StrongCandidate) RuleResult {
	return RuleResult{
		Passed: c.Alpha > 0,
		Label:  fmt.Sprintf("跑赢大盘 (%+.2f%%)", c.Alpha),
		Weight: r.Weight,
	}
}

// StreakRule 守住实体高点天数，>= 3 日权重较高
type StreakRule struct {
	StrongWeight int
	WeakWeight   int
}

func (StreakRule) Name() string { return "streak" }

func (r StreakRule) Evaluate(c model.StrongCandidate) RuleResult {
	switch {
	case c.Streak >= indicator.StrongStreak:
		return RuleResult{Passed: true, Label: fmt.Sprintf("强势连续 %d 日", c.Streak), Weight: r.StrongWeight}
	case c.Streak >= 1:
		return RuleResult{Passed: true, Label: fmt.Sprintf("转强 %d 日", c.Streak), Weight: r.WeakWeight}
	default:
		return RuleResult{}
	}
}

// MAAlignmentRule 现价 > MA5 > MA20；均线不足时不成立
type MAAlignmentRule struct {
	Weight int
}

func (MAAlignmentRule) Name() string { return "ma_alignment" }

func (r MAAlignmentRule) Evaluate(c model.StrongCandidate) RuleResult {
	t := c.Technical
	// NaN 比较恒为 false
	if c.Price > t.MAShort && t.MAShort > t.MALong {
		return RuleResult{Passed: true, Label: "均线多头排列", Weight: r.Weight}
	}
	return RuleResult{}
}

// RSIBandRule RSI 位于强势但未过热的区间（含边界）
type RSIBandRule struct {
	Low    float64
	High   float64
	Weight int
}

func (RSIBandRule) Name() string { return "rsi_band" }

func (r RSIBandRule) Evaluate(c model.StrongCandidate) RuleResult {
	rsi := c.Technical.RSI
	if rsi >= r.Low && rsi <= r.High {
		return RuleResult{Passed: true, Label: fmt.Sprintf("RSI 强势区间 (%.1f)", rsi), Weight: r.Weight}
	}
	return RuleResult{}
}
