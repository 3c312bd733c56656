package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/internal/session"
	"github.com/raydebug/puretexaspoker-sub003/internal/storage"
	"github.com/raydebug/puretexaspoker-sub003/internal/ws"
	"github.com/raydebug/puretexaspoker-sub003/models"
)

// Server wires the table registry, the audit store and the connection hub
// behind one HTTP surface.
type Server struct {
	registry *engine.Registry
	store    storage.Store
	sessions session.Registry
	hub      *ws.Hub
	logger   *log.Logger
	http     *http.Server
}

func New(registry *engine.Registry, store storage.Store, sessions session.Registry, hub *ws.Hub, logger *log.Logger) *Server {
	s := &Server{
		registry: registry,
		store:    store,
		sessions: sessions,
		hub:      hub,
		logger:   logger,
	}
	s.hub.OnIncoming = s.handleIncoming
	return s
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", s.handleHealth)
	router.GET("/ws", ws.Handler(s.hub, s.sessions))

	api := router.Group("/api")
	{
		api.GET("/tables", s.handleListTables)
		api.POST("/tables", s.handleCreateTable)
		api.DELETE("/tables/:tableId", s.handleDestroyTable)
		api.GET("/tables/:tableId/state", s.handleTableState)
		api.POST("/tables/:tableId/join", s.handleJoin)
		api.POST("/tables/:tableId/leave", s.handleLeave)
		api.POST("/tables/:tableId/seat", s.handleTakeSeat)
		api.POST("/tables/:tableId/standup", s.handleStandUp)
		api.POST("/tables/:tableId/start", s.handleStartHand)
		api.POST("/tables/:tableId/action", s.handleAction)
		api.GET("/hands/:handId/actions", s.handleHandActions)
		api.GET("/hands/:handId/commitment", s.handleHandCommitment)
		api.POST("/verify", s.handleVerify)
	}
	return router
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// handleIncoming processes socket-originated game actions. Failures go back
// only to the sender.
func (s *Server) handleIncoming(msg ws.IncomingMessage) {
	if msg.Event != "action" {
		return
	}
	action, err := models.ParseAction(msg.Action, msg.Amount)
	if err == nil {
		err = s.registry.DispatchAction(msg.TableID, msg.From, action)
	}
	if err != nil {
		s.hub.SendToPlayer(msg.From, ws.OutgoingMessage{
			Event:   "error",
			TableID: msg.TableID,
			Data:    errorBody(err),
		})
	}
}
