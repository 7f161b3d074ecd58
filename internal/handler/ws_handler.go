package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/middleware"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/service"
	ws "github.com/learnora/learnora-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live course progress updates to students.
type WSHandler struct {
	rdb             *redis.Client
	progressService *service.ProgressService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, progressService *service.ProgressService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:             rdb,
		progressService: progressService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// ProgressStream godoc
// WS /ws/v1/student/courses/:course_id/progress/stream
// Upgrades to WebSocket and forwards progress events published by the
// aggregator. The client may send pings; every progress change arrives as
// a progress_update event.
func (h *WSHandler) ProgressStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course ID"})
		return
	}

	studentID := claims.UserID

	// Enrollment gates the stream the same way it gates the REST surface.
	view, err := h.progressService.Get(c.Request.Context(), studentID, courseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	// Wrapped so the reader goroutine's pong/error replies cannot race the
	// progress writes below.
	conn := ws.Wrap(rawConn)
	defer conn.Close()

	if !view.Purchased {
		conn.WriteError("course not purchased")
		return
	}

	wsLog := h.log.With().
		Str("student_id", studentID.String()).
		Str("course_id", courseID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	// Send the current snapshot first so the client never starts blank.
	if view.Progress != nil {
		conn.WriteTyped(ws.ProgressUpdateResponse{
			Event:    ws.EventProgressUpdate,
			Progress: view.Progress,
		})
	}

	channel := config.CacheKey.ProgressChannel(studentID.String(), courseID.String())
	sub := h.rdb.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	// Reader goroutine: handles pings and detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}

			switch msg.Action {
			case ws.ActionPing:
				conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			default:
				wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
				conn.WriteError("unknown action: " + string(msg.Action))
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			var progress model.CourseProgress
			if err := json.Unmarshal([]byte(msg.Payload), &progress); err != nil {
				wsLog.Error().Err(err).Msg("Invalid progress event payload")
				continue
			}
			if err := conn.WriteTyped(ws.ProgressUpdateResponse{
				Event:    ws.EventProgressUpdate,
				Progress: &progress,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
