package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Logging struct {
		Level  string   `yaml:"level"`
		Output []string `yaml:"output"`
		Dir    string   `yaml:"dir"`
	} `yaml:"logging"`

	DataSources struct {
		Yahoo struct {
			BaseURL   string        `yaml:"base_url"`
			Timeout   time.Duration `yaml:"timeout"`
			RateLimit int           `yaml:"rate_limit"` // 每秒请求数
			Workers   int           `yaml:"workers"`    // 批次抓取并发数
		} `yaml:"yahoo"`
	} `yaml:"data_sources"`

	Catalog struct {
		Source string `yaml:"source"` // file | database
		Path   string `yaml:"path"`
	} `yaml:"catalog"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Pipeline PipelineConfig `yaml:"pipeline"`

	Scheduler struct {
		Enabled  bool           `yaml:"enabled"`
		PushCron string         `yaml:"push_cron"`
		TopN     int            `yaml:"top_n"`
		Criteria CriteriaConfig `yaml:"criteria"`
	} `yaml:"scheduler"`
}

// PipelineConfig 管道参数
type PipelineConfig struct {
	CandidateCap    int           `yaml:"candidate_cap"`
	ScoreThreshold  int           `yaml:"score_threshold"`
	HistorySessions int           `yaml:"history_sessions"`
	MinSessions     int           `yaml:"min_sessions"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

// CriteriaConfig 定时任务使用的筛选条件
type CriteriaConfig struct {
	MinPrice      float64 `yaml:"min_price"`
	MaxPrice      float64 `yaml:"max_price"`
	MinMarketCap  float64 `yaml:"min_market_cap"`
	MinVolumeLots float64 `yaml:"min_volume_lots"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析YAML配置并套用环境变量与默认值
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

// Default 无配置文件时使用的默认配置
func Default() *Config {
	var config Config
	overrideFromEnv(&config)
	applyDefaults(&config)
	return &config
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		config.Logging.Level = env
	}

	// 行情源
	if env := os.Getenv("YAHOO_BASE_URL"); env != "" {
		config.DataSources.Yahoo.BaseURL = env
	}
	if env := os.Getenv("YAHOO_WORKERS"); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			config.DataSources.Yahoo.Workers = n
		}
	}

	// 股票目录
	if env := os.Getenv("CATALOG_SOURCE"); env != "" {
		config.Catalog.Source = strings.ToLower(env)
	}
	if env := os.Getenv("CATALOG_PATH"); env != "" {
		config.Catalog.Path = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// applyDefaults 填充未设置的字段
func applyDefaults(config *Config) {
	if config.App.Name == "" {
		config.App.Name = "strengthradar"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	yahoo := &config.DataSources.Yahoo
	if yahoo.BaseURL == "" {
		yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if yahoo.Timeout <= 0 {
		yahoo.Timeout = 10 * time.Second
	}
	if yahoo.RateLimit <= 0 {
		yahoo.RateLimit = 10
	}
	if yahoo.Workers <= 0 {
		yahoo.Workers = 16
	}

	if config.Catalog.Source == "" {
		config.Catalog.Source = "file"
	}
	if config.Catalog.Path == "" {
		config.Catalog.Path = "stock_database.json"
	}

	pg := &config.Database.Postgres
	if pg.Port == 0 {
		pg.Port = 5432
	}
	if pg.SSLMode == "" {
		pg.SSLMode = "disable"
	}

	if config.NATS.Subject == "" {
		config.NATS.Subject = "screener.recommendations"
	}

	if config.API.Port == "" {
		config.API.Port = "8080"
	}
	if config.API.ReadTimeout <= 0 {
		config.API.ReadTimeout = 30 * time.Second
	}
	if config.API.WriteTimeout <= 0 {
		config.API.WriteTimeout = 120 * time.Second
	}

	p := &config.Pipeline
	if p.CandidateCap <= 0 {
		p.CandidateCap = 150
	}
	if p.ScoreThreshold <= 0 {
		p.ScoreThreshold = 6
	}
	if p.HistorySessions <= 0 {
		p.HistorySessions = 45
	}
	if p.MinSessions <= 0 {
		p.MinSessions = 10
	}
	if p.FetchTimeout <= 0 {
		p.FetchTimeout = 15 * time.Second
	}

	s := &config.Scheduler
	if s.PushCron == "" {
		s.PushCron = "50 12 * * 1-5"
	}
	if s.TopN <= 0 {
		s.TopN = 8
	}
	if s.Criteria.MinPrice <= 0 {
		s.Criteria.MinPrice = 15
	}
	if s.Criteria.MaxPrice <= 0 {
		s.Criteria.MaxPrice = 1000
	}
	if s.Criteria.MinVolumeLots <= 0 {
		s.Criteria.MinVolumeLots = 2500
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}

// LoadOrDefault 配置文件不存在时退回默认配置
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadConfig(path)
}

// DSN 生成 Postgres 连接字符串
func (c *Config) DSN() string {
	pg := c.Database.Postgres
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Taipei",
		pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode,
	)
}
