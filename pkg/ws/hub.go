package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/langchou/evcompare/internal/monitoring"
)

// MessageType WebSocket 消息类型
const (
	MsgTypeInit         = "init"          // 初始化数据（参考价格+排放因子+车型）
	MsgTypePricesUpdate = "prices_update" // 参考价格变化
	MsgTypeCompute      = "compute"       // 客户端请求重新计算
	MsgTypeResult       = "result"        // 计算结果
	MsgTypeError        = "error"         // 错误消息
)

const (
	maxMessageSize = 1 << 20
	handleTimeout  = 10 * time.Second
	writeWait      = 10 * time.Second
)

// Message WebSocket 消息结构
type Message struct {
	Type string      `json:"type"`
	ID   string      `json:"id,omitempty"` // 回复时带上请求 ID
	Data interface{} `json:"data"`
}

// InboundMessage 客户端发来的消息
type InboundMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

// InitData 初始化数据
type InitData struct {
	Prices          interface{} `json:"prices"`
	EmissionFactors interface{} `json:"emission_factors"`
	Presets         interface{} `json:"presets,omitempty"`
}

// ErrorData 错误消息内容
type ErrorData struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// MessageHandler 处理客户端消息，返回 nil 表示不回复
type MessageHandler func(ctx context.Context, c *Client, msg InboundMessage) *Message

// Client WebSocket 客户端
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub WebSocket 连接管理中心
type Hub struct {
	logger     *zap.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	// 初始数据提供者回调
	getInitData func() *InitData
	handler     MessageHandler
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// SetInitDataProvider 设置初始数据提供者
func (h *Hub) SetInitDataProvider(provider func() *InitData) {
	h.getInitData = provider
}

// SetMessageHandler 设置客户端消息处理
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.handler = handler
}

// Run 运行 Hub，直到 Stop
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			monitoring.UpdateActiveConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			monitoring.UpdateActiveConnections(total)
			h.logger.Info("WebSocket client connected", zap.String("client_id", client.ID), zap.Int("total_clients", total))

			h.sendInitData(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			monitoring.UpdateActiveConnections(total)
			h.logger.Info("WebSocket client disconnected", zap.String("client_id", client.ID), zap.Int("total_clients", total))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 慢消费者，关闭连接
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop 停止 Hub 并关闭所有客户端
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// sendInitData 发送初始数据给新连接的客户端
func (h *Hub) sendInitData(client *Client) {
	if h.getInitData == nil {
		h.logger.Warn("No init data provider set")
		return
	}

	initData := h.getInitData()
	if initData == nil {
		h.logger.Warn("Init data provider returned nil")
		return
	}

	client.Send(Message{Type: MsgTypeInit, Data: initData})
}

// Broadcast 广播消息给所有客户端
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.stop:
	}
}

// BroadcastMessage 广播结构化消息给所有客户端
func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	jsonData, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.Broadcast(jsonData)
}

// BroadcastPricesUpdate 广播参考价格变化
func (h *Hub) BroadcastPricesUpdate(prices interface{}) {
	h.BroadcastMessage(MsgTypePricesUpdate, prices)
}

// ClientCount 获取客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewClient 创建客户端
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// Register 注册客户端
func (c *Client) Register() {
	select {
	case c.hub.register <- c:
	case <-c.hub.stop:
	}
}

// Unregister 注销客户端
func (c *Client) Unregister() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.stop:
	}
}

// Send 发送结构化消息，缓冲区满时丢弃
func (c *Client) Send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("Failed to marshal message", zap.Error(err), zap.String("type", msg.Type))
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("Client buffer full, message dropped", zap.String("client_id", c.ID), zap.String("type", msg.Type))
	}
}

// ReadPump 读取客户端消息并交给处理器
func (c *Client) ReadPump() {
	defer func() {
		c.Unregister()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("WebSocket read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}

		var msg InboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Send(Message{Type: MsgTypeError, Data: ErrorData{Error: "invalid message: " + err.Error()}})
			continue
		}
		if c.hub.handler == nil {
			continue
		}

		if reply := c.dispatch(msg); reply != nil {
			reply.ID = msg.ID
			c.Send(*reply)
		}
	}
}

// dispatch 调用处理器；处理器 panic 时回复错误，连接保持
func (c *Client) dispatch(msg InboundMessage) (reply *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			c.hub.logger.Error("WebSocket message handler panicked",
				zap.String("client_id", c.ID), zap.String("type", msg.Type), zap.Any("panic", r))
			reply = &Message{Type: MsgTypeError, Data: ErrorData{Error: "internal error"}}
		}
	}()
	return c.hub.handler(ctx, c, msg)
}

// WritePump 发送消息
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
