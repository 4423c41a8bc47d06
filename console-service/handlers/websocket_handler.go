package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"clientconsole-backend/console-service/controllers"
	"clientconsole-backend/console-service/services"
	"clientconsole-backend/shared/config"
	"clientconsole-backend/shared/database/models"
)

// WebSocketHandler serves the live client-list socket and the raw
// change-event feed
type WebSocketHandler struct {
	service  *services.ClientService
	hub      *services.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket handler. Connections are only
// accepted from the configured frontend origin (or same-origin tools that
// send no Origin header).
func NewWebSocketHandler(service *services.ClientService, hub *services.Hub) *WebSocketHandler {
	cfg := config.GetConfig()

	return &WebSocketHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == cfg.FrontendURL
			},
		},
	}
}

// ListCommand is one client-list instruction sent over the socket
type ListCommand struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Page   int    `json:"page"`
}

// socketMessage is the envelope pushed to websocket clients
type socketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// HandleClientList runs one live client-list connection. Each connection
// owns its own list state: the socket receives a fresh snapshot after every
// search, filter, page, or collection change.
// @Summary Live client list
// @Description Websocket: stream client-list snapshots and accept search/filter/page commands
// @Tags websocket
// @Security BearerAuth
// @Router /ws/console/clients [get]
func (h *WebSocketHandler) HandleClientList(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("🔗 Client-list socket connected: %s", c.ClientIP())

	var writeMu sync.Mutex
	push := func(snapshot controllers.ListSnapshot) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(socketMessage{Type: "snapshot", Data: snapshot}); err != nil {
			log.Printf("❌ Failed to push list snapshot: %v", err)
		}
	}

	controller := controllers.NewListController(c.Request.Context(), h.service, h.hub, push)
	defer controller.Close()

	go controller.Refetch()

	for {
		var cmd ListCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			break
		}

		switch cmd.Action {
		case "search":
			controller.SetSearch(cmd.Value)
		case "status":
			controller.SetStatusFilter(cmd.Value)
		case "category":
			controller.SetCategoryFilter(cmd.Value)
		case "page":
			controller.SetPage(cmd.Page)
		case "clear":
			controller.ClearFilters()
		case "refetch":
			controller.Refetch()
		case "ping":
			writeMu.Lock()
			conn.WriteJSON(socketMessage{Type: "pong"})
			writeMu.Unlock()
		default:
			writeMu.Lock()
			conn.WriteJSON(socketMessage{Type: "error", Data: "unknown action: " + cmd.Action})
			writeMu.Unlock()
		}
	}

	log.Printf("🔗 Client-list socket disconnected: %s", c.ClientIP())
}

// HandleChangeFeed streams raw change events. Optional query parameters
// narrow the feed: table (defaults to clients), event (INSERT/UPDATE/DELETE),
// and row_id.
// @Summary Client change feed
// @Description Websocket: stream raw insert/update/delete events for clients
// @Tags websocket
// @Security BearerAuth
// @Param table query string false "Table filter (default: clients)"
// @Param event query string false "Event type filter" Enums(INSERT, UPDATE, DELETE)
// @Param row_id query string false "Only events for this row"
// @Router /ws/console/changes [get]
func (h *WebSocketHandler) HandleChangeFeed(c *gin.Context) {
	filter := services.SubscriptionFilter{
		Table: c.DefaultQuery("table", models.Client{}.TableName()),
		Event: services.ChangeEventType(c.Query("event")),
	}
	if raw := c.Query("row_id"); raw != "" {
		rowID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid row_id"})
			return
		}
		filter.RowID = &rowID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("🔗 Change-feed socket connected: %s", c.ClientIP())

	sub := h.hub.Subscribe(filter)
	defer sub.Close()

	var writeMu sync.Mutex
	done := make(chan struct{})

	go func() {
		defer close(done)
		for event := range sub.C {
			writeMu.Lock()
			err := conn.WriteJSON(socketMessage{Type: "change", Data: event})
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	// The read loop exists to notice the peer going away and to answer pings
	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg["action"] == "ping" {
			writeMu.Lock()
			conn.WriteJSON(socketMessage{Type: "pong"})
			writeMu.Unlock()
		}
	}

	sub.Close()
	<-done

	log.Printf("🔗 Change-feed socket disconnected: %s", c.ClientIP())
}
