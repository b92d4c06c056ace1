// pkg/messaging/nats.go
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/ternarybob/arbor"
)

// StreamName 推荐推送使用的 JetStream 流
const StreamName = "SCREENER_STREAM"

// ErrNotConnected NATS 连接不可用
var ErrNotConnected = errors.New("NATS未连接")

// Publisher 推荐批次的发布端
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// NATSPublisher NATS JetStream 发布端
//
// JetStream 不可用时退回核心 NATS 发布。
type NATSPublisher struct {
	conn      *nats.Conn
	jetStream jetstream.JetStream
	natsURL   string
	logger    arbor.ILogger
	mu        sync.RWMutex
	streamOK  bool
}

// NewNATSPublisher 连接 NATS 并建立推荐流
func NewNATSPublisher(ctx context.Context, natsURL string, logger arbor.ILogger) (*NATSPublisher, error) {
	p := &NATSPublisher{natsURL: natsURL, logger: logger}

	nc, err := nats.Connect(natsURL,
		nats.Name("strengthradar"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if p.logger != nil {
				p.logger.Warn().Err(err).Msg("NATS连接断开")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if p.logger != nil {
				p.logger.Info().Msg("NATS重新连接成功")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}
	p.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("创建JetStream失败: %w", err)
	}
	p.jetStream = js

	if err := p.setupStream(ctx); err != nil && logger != nil {
		logger.Warn().Err(err).Msg("设置Stream失败，改用核心NATS发布")
	}

	return p, nil
}

// setupStream 建立推荐数据流
func (p *NATSPublisher) setupStream(ctx context.Context) error {
	cfg := jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{"screener.*"},
		Description: "强势股推荐数据流",
		Retention:   jetstream.LimitsPolicy,
		MaxMsgs:     10000,
		MaxBytes:    50 * 1024 * 1024,   // 50MB
		MaxAge:      7 * 24 * time.Hour, // 保留7天
	}
	if _, err := p.jetStream.CreateOrUpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("创建/更新Stream %s 失败: %w", cfg.Name, err)
	}

	p.mu.Lock()
	p.streamOK = true
	p.mu.Unlock()
	if p.logger != nil {
		p.logger.Info().Str("stream", cfg.Name).Msg("Stream 设置成功")
	}
	return nil
}

// Publish 发布消息到指定主题
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}

	p.mu.RLock()
	streamOK := p.streamOK
	p.mu.RUnlock()

	if streamOK {
		if _, err := p.jetStream.Publish(ctx, subject, payload); err != nil {
			return fmt.Errorf("发布消息到 %s 失败: %w", subject, err)
		}
	} else {
		if err := p.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("发布消息到 %s 失败: %w", subject, err)
		}
		if err := p.conn.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("刷新NATS连接失败: %w", err)
		}
	}

	if p.logger != nil {
		p.logger.Debug().Str("subject", subject).Int("bytes", len(payload)).Msg("发布消息")
	}
	return nil
}

// Encode 将消息体序列化为字节
func Encode(data interface{}) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("序列化数据失败: %w", err)
		}
		return payload, nil
	}
}

// Close 关闭连接
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
			return fmt.Errorf("关闭NATS连接失败: %w", err)
		}
	}
	if p.logger != nil {
		p.logger.Info().Msg("NATS连接已关闭")
	}
	return nil
}

// IsConnected 检查连接状态
func (p *NATSPublisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}
