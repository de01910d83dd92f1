package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ohhell-service/internal/config"
	"ohhell-service/internal/game"
	"ohhell-service/internal/registry"
	pkgAuth "ohhell-service/pkg/auth"
	appErr "ohhell-service/pkg/errors"
	"ohhell-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handler struct {
	registry *registry.Registry
}

func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{registry: reg}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// HandleWS upgrades the connection and runs it. A connection is unbound
// until its first successful create-room, join-room or rejoin-room; only
// then do in-room actions flow through to a room actor.
func (h *Handler) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	client := newClient(conn, h.registry)
	client.run()
}

type client struct {
	conn     *websocket.Conn
	registry *registry.Registry
	limiter  *rate.Limiter

	room     *game.Room
	playerID string
	outbound <-chan game.OutgoingMessage

	writeMu   sync.Mutex
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, reg *registry.Registry) *client {
	conn.SetReadLimit(1 << 16)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		registry:  reg,
		limiter:   rate.NewLimiter(10, 20),
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	defer func() {
		close(c.done)
		if c.room != nil {
			c.room.Unsubscribe(c.playerID, c.outbound)
		}
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			if c.room != nil {
				logger.Log.Info("WS read error", zap.Error(err), zap.String("player", c.playerID))
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if !c.limiter.Allow() {
			c.sendError("slow down")
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.sendError("invalid payload")
			continue
		}
		if incoming.Type == "" {
			continue
		}

		c.dispatch(incoming.Type, incoming.Data)
	}
}

func (c *client) dispatch(msgType string, data json.RawMessage) {
	switch msgType {
	case "create-room":
		c.handleCreateRoom(data)
	case "join-room":
		c.handleJoinRoom(data)
	case "rejoin-room":
		c.handleRejoinRoom(data)
	default:
		if c.room == nil {
			c.sendError("join a room first")
			return
		}
		if err := c.room.HandleAction(c.playerID, msgType, data); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *client) handleCreateRoom(data json.RawMessage) {
	if c.room != nil {
		c.sendError("already in a room")
		return
	}
	var payload struct {
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("invalid payload")
		return
	}

	room, playerID, err := c.registry.CreateRoom(payload.PlayerName)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.bind(room, playerID, "room-created")
}

func (c *client) handleJoinRoom(data json.RawMessage) {
	if c.room != nil {
		c.sendError("already in a room")
		return
	}
	var payload struct {
		RoomCode   string `json:"roomCode"`
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("invalid payload")
		return
	}

	room, ok := c.registry.Lookup(payload.RoomCode)
	if !ok {
		c.sendError(appErr.ErrRoomNotFound.Error())
		return
	}
	playerID, err := room.Join(payload.PlayerName)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.bind(room, playerID, "room-joined")
}

func (c *client) handleRejoinRoom(data json.RawMessage) {
	if c.room != nil {
		c.sendError("already in a room")
		return
	}
	var payload struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError("invalid payload")
		return
	}

	room, ok := c.registry.Lookup(payload.RoomCode)
	if !ok {
		c.sendError(appErr.ErrRoomNotFound.Error())
		return
	}
	if payload.Token != "" {
		claims, err := pkgAuth.ParseSeatToken(payload.Token)
		if err != nil || claims.RoomCode != room.Code() || claims.PlayerID != payload.PlayerID {
			c.sendError(appErr.ErrBadToken.Error())
			return
		}
	}
	if err := room.Rejoin(payload.PlayerID); err != nil {
		c.sendError(err.Error())
		return
	}
	c.bind(room, payload.PlayerID, "room-joined")
}

// bind subscribes to the room, confirms to the client, and starts draining
// the room's outbound channel. Subscribing closes any stale channel for the
// same player, which tears that older connection down.
func (c *client) bind(room *game.Room, playerID, confirmType string) {
	outbound, err := room.Subscribe(playerID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.room = room
	c.playerID = playerID
	c.outbound = outbound

	c.writeJSON(game.OutgoingMessage{
		Type: confirmType,
		Data: gin.H{
			"roomCode": room.Code(),
			"playerId": playerID,
			"token":    seatToken(room.Code(), playerID),
		},
	})

	go c.writePump(outbound)
}

func (c *client) writePump(outbound <-chan game.OutgoingMessage) {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-outbound:
			if !ok {
				return
			}
			if err := c.writeJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("player", c.playerID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) writeJSON(msg game.OutgoingMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *client) sendError(message string) {
	if err := c.writeJSON(game.OutgoingMessage{
		Type: "error",
		Data: gin.H{"message": message},
	}); err != nil {
		logger.Log.Info("WS write error", zap.Error(err))
	}
}

// seatToken signs a rejoin token when a JWT secret is configured.
func seatToken(roomCode, playerID string) string {
	if config.GlobalConfig == nil || config.GlobalConfig.JWT.Secret == "" {
		return ""
	}
	token, err := pkgAuth.GenerateSeatToken(roomCode, playerID)
	if err != nil {
		logger.Log.Warn("failed to sign seat token", zap.Error(err))
		return ""
	}
	return token
}
