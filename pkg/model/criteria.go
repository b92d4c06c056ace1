package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// LotSize 一张 = 1000 股
const LotSize = 1000

// ErrInvalidCriteria 筛选条件不合法
var ErrInvalidCriteria = errors.New("筛选条件不合法")

// criteriaValidator 可并发使用，会缓存结构体的标签解析结果
var criteriaValidator = validator.New()

// FilterCriteria 调用方提供的筛选条件，单次管道运行内不可变
//
// binding 标签供 gin 绑定请求时检查，validate 标签供 Validate 使用，两者保持一致。
type FilterCriteria struct {
	MinPrice      float64 `json:"min_price" yaml:"min_price" binding:"gt=0" validate:"gt=0"`
	MaxPrice      float64 `json:"max_price" yaml:"max_price" binding:"gt=0,gtfield=MinPrice" validate:"gt=0,gtfield=MinPrice"`
	MinMarketCap  float64 `json:"min_market_cap" yaml:"min_market_cap" binding:"gte=0" validate:"gte=0"`   // 元，0 表示不限
	MinVolumeLots float64 `json:"min_volume_lots" yaml:"min_volume_lots" binding:"gte=0" validate:"gte=0"` // 张
	GapUpOnly     bool    `json:"gap_up_only" yaml:"gap_up_only"`
}

// DefaultCriteria 默认筛选条件
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		MinPrice:      10,
		MaxPrice:      1000,
		MinMarketCap:  0,
		MinVolumeLots: 1000,
	}
}

// Validate 在任何抓取之前检查条件，失败时包装 ErrInvalidCriteria
func (c FilterCriteria) Validate() error {
	if err := criteriaValidator.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return fmt.Errorf("%w: %s 不满足 %s%s (值=%v)", ErrInvalidCriteria, f.Field(), f.Tag(), paramSuffix(f.Param()), f.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
	}
	return nil
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}

// MinVolumeShares 最小成交量换算为股
func (c FilterCriteria) MinVolumeShares() float64 {
	return c.MinVolumeLots * LotSize
}

// SameKey 四个主要数值字段相同即视为同一快照键
func (c FilterCriteria) SameKey(o FilterCriteria) bool {
	return c.MinPrice == o.MinPrice &&
		c.MaxPrice == o.MaxPrice &&
		c.MinMarketCap == o.MinMarketCap &&
		c.MinVolumeLots == o.MinVolumeLots
}
