// Package events доставляет события киоска оболочке UI через WebSocket.
package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lavadero/internal/domain/ports"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer очередь событий клиента; переполнение означает зависший клиент
	sendBuffer = 64
)

// Message конверт события: {"event": ..., "payload": ...}
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// client у каждого подключения своя очередь и своя горутина записи
type client struct {
	conn *websocket.Conn
	addr string
	send chan []byte
}

// Hub хранит подключения оболочки и рассылает им события.
// Без подключений событие отбрасывается.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   ports.Logger
}

// NewHub создаёт хаб. allowOrigin проверяет заголовок Origin при подключении;
// nil оставляет проверку gorilla/websocket на совпадение с Host.
func NewHub(logger ports.Logger, allowOrigin func(origin string) bool) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
	if allowOrigin != nil {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return allowOrigin(r.Header.Get("Origin"))
		}
	}
	return h
}

// Emit реализует ports.EventEmitter. Не блокируется на записи в сеть:
// клиент с переполненной очередью отключается.
func (h *Hub) Emit(name string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события %s: %w", name, err)
	}
	data, err := json.Marshal(Message{Event: name, Payload: raw})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("клиент %s не успевает принимать события, отключаем", c.addr)
			h.dropLocked(c)
		}
	}
	return nil
}

// Clients количество подключённых клиентов
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP принимает WebSocket-подключение и держит его до закрытия клиентом
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ошибка WebSocket upgrade (%s): %v", r.Header.Get("Origin"), err)
		return
	}
	c := &client{conn: conn, addr: r.RemoteAddr, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("UI подключен: %s (всего %d)", c.addr, total)

	go h.writePump(c)

	// входящие сообщения не используются, чтение нужно для обработки close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

// writePump единственный писатель в conn. Закрывает соединение, когда
// очередь закрыта хабом или запись не удалась.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("не удалось отправить событие клиенту %s: %v", c.addr, err)
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.dropLocked(c)
	}
	h.mu.Unlock()
	if ok {
		h.logger.Info("UI отключен: %s", c.addr)
	}
}

// dropLocked удаляет клиента; очередь закрывается ровно один раз под h.mu
func (h *Hub) dropLocked(c *client) {
	delete(h.clients, c)
	close(c.send)
}
