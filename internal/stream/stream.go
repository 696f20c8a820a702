package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"opensea-bid-bot-go/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// reconnectDelay 是连接断开后重连前的等待时间
	reconnectDelay = 5 * time.Second
	// eventItemListed 是新挂单事件的类型标识
	eventItemListed = "item_listed"
)

// subscribeMessage 是订阅某个集合事件的请求
type subscribeMessage struct {
	Action          string `json:"action"`
	ContractAddress string `json:"contract_address"`
}

// Watcher 订阅市场事件流, 把指定集合的新挂单事件投递到通道。
// 连接断开时自动重连, 直到 ctx 被取消。
type Watcher struct {
	url             string
	contractAddress string
	events          chan models.ListingEvent
	logger          *zap.SugaredLogger
}

// NewWatcher 创建一个事件流监听器。
func NewWatcher(url, contractAddress string, logger *zap.SugaredLogger) *Watcher {
	return &Watcher{
		url:             url,
		contractAddress: strings.ToLower(contractAddress),
		events:          make(chan models.ListingEvent, 64),
		logger:          logger,
	}
}

// Events 返回挂单事件通道。Run 退出时通道会被关闭。
func (w *Watcher) Events() <-chan models.ListingEvent {
	return w.events
}

// Run 维持到事件流的连接并持续投递事件, 直到 ctx 被取消。
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := w.connect(ctx)
		if err != nil {
			w.logger.Warnf("连接事件流失败: %v, %s 后重试", err, reconnectDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
			continue
		}

		err = w.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.logger.Warnf("事件流连接断开: %v, %s 后重连", err, reconnectDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// connect 建立 WebSocket 连接并发送订阅请求。
func (w *Watcher) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return nil, fmt.Errorf("无法连接到事件流: %w", err)
	}

	sub := subscribeMessage{Action: "subscribe", ContractAddress: w.contractAddress}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("发送订阅请求失败: %w", err)
	}
	w.logger.Infof("已订阅集合 %s 的事件流", w.contractAddress)
	return conn, nil
}

// readLoop 读取并分发事件, 连接出错时返回。
func (w *Watcher) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// ctx 取消时关闭连接, 解除 ReadMessage 的阻塞
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev models.ListingEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			w.logger.Warnf("无法解析事件流消息, 跳过: %v", err)
			continue
		}
		if ev.EventType != eventItemListed {
			continue
		}
		if strings.ToLower(ev.ContractAddress) != w.contractAddress {
			continue
		}

		select {
		case w.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
