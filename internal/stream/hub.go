// Package stream 通过 websocket 推送风险状态快照。
package stream

import (
	"context"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"risk-engine-go/risk"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MessageTypeRiskState 状态推送消息类型
const MessageTypeRiskState = "riskState"

// Message 推送给订阅方的消息
type Message struct {
	Type string     `json:"type"`
	Data risk.State `json:"data"`
}

// Options hub 配置
type Options struct {
	AllowedOrigins []string
	Logger         *zap.Logger
	OnClientCount  func(int) // 订阅数变化回调，用于指标
}

// Hub 管理所有订阅连接。Publish 不阻塞调用方，缓冲满时丢弃并计数。
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	origins *OriginChecker
	log     *zap.Logger
	onCount func(int)
	dropped atomic.Uint64

	mu sync.RWMutex
}

// NewHub 创建 hub，需调用 Run 后才会分发消息。
func NewHub(opts Options) *Hub {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		origins:    NewOriginChecker(opts.AllowedOrigins),
		log:        log.Named("stream"),
		onCount:    opts.OnClientCount,
	}
}

// Run 主循环，ctx 取消时关闭所有连接后返回。
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("stream client connected", zap.Int("clients", n))
			h.countChanged(n)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clients = append(clients, c)
			}
			h.mu.RUnlock()

			for _, c := range clients {
				select {
				case c.send <- msg:
				default:
					// 消费过慢的订阅方直接断开
					h.log.Warn("dropping slow stream client")
					h.remove(c)
				}
			}
		}
	}
}

// Publish 广播一份状态快照。
func (h *Hub) Publish(st risk.State) {
	data, err := json.Marshal(Message{Type: MessageTypeRiskState, Data: st})
	if err != nil {
		h.log.Error("encode risk state failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.dropped.Add(1)
	}
}

// ClientCount 当前订阅数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped 因缓冲已满被丢弃的快照数
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("stream client disconnected", zap.Int("clients", n))
	h.countChanged(n)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.countChanged(0)
}

func (h *Hub) countChanged(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}
