package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raydebug/puretexaspoker-sub003/engine"
	"github.com/raydebug/puretexaspoker-sub003/internal/storage"
	"github.com/raydebug/puretexaspoker-sub003/models"
)

func errorBody(err error) gin.H {
	if ge, ok := models.AsGameError(err); ok {
		return gin.H{"class": ge.Class, "code": ge.Code, "error": ge.Message}
	}
	return gin.H{"error": err.Error()}
}

// respondError maps the error taxonomy onto HTTP statuses: bad input is 400,
// rule violations 409, missing resources 404 and integrity failures 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if ge, ok := models.AsGameError(err); ok {
		switch ge.Class {
		case models.ClassValidation:
			status = http.StatusBadRequest
		case models.ClassRuleViolation:
			status = http.StatusConflict
		case models.ClassNotFound:
			status = http.StatusNotFound
		}
	}
	c.JSON(status, errorBody(err))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tables": len(s.registry.ListTables())})
}

func (s *Server) handleListTables(c *gin.Context) {
	type tableInfo struct {
		TableID   string `json:"tableId"`
		Observers int    `json:"observers"`
		Seated    int    `json:"seated"`
	}
	tables := make([]tableInfo, 0)
	for _, tableID := range s.registry.ListTables() {
		observers, seated, err := s.registry.Counts(tableID)
		if err != nil {
			continue
		}
		tables = append(tables, tableInfo{TableID: tableID, Observers: observers, Seated: seated})
	}
	c.JSON(http.StatusOK, tables)
}

func (s *Server) handleCreateTable(c *gin.Context) {
	var req struct {
		TableID string             `json:"tableId" binding:"required"`
		Config  models.TableConfig `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.registry.CreateTable(req.TableID, req.Config); err != nil {
		respondError(c, err)
		return
	}
	s.logger.Info("table created", "table", req.TableID)
	c.JSON(http.StatusCreated, gin.H{"tableId": req.TableID})
}

func (s *Server) handleDestroyTable(c *gin.Context) {
	if err := s.registry.DestroyTable(c.Param("tableId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTableState(c *gin.Context) {
	snapshot, err := s.registry.SnapshotFor(c.Param("tableId"), c.Query("playerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleJoin(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
		Nickname string `json:"nickname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Nickname == "" {
		req.Nickname = req.PlayerID
	}
	if err := s.registry.Join(c.Param("tableId"), req.PlayerID, req.Nickname); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tableId": c.Param("tableId"), "playerId": req.PlayerID})
}

func (s *Server) handleLeave(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.registry.Leave(c.Param("tableId"), req.PlayerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleTakeSeat(c *gin.Context) {
	var req struct {
		PlayerID   string `json:"playerId" binding:"required"`
		SeatNumber int    `json:"seatNumber"`
		BuyIn      int    `json:"buyIn"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.registry.TakeSeat(c.Param("tableId"), req.PlayerID, req.SeatNumber, req.BuyIn); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tableId": c.Param("tableId"), "seatNumber": req.SeatNumber})
}

func (s *Server) handleStandUp(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.registry.StandUp(c.Param("tableId"), req.PlayerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStartHand(c *gin.Context) {
	if err := s.registry.StartHand(c.Param("tableId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) handleAction(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
		Action   string `json:"action" binding:"required"`
		Amount   int    `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, err := models.ParseAction(req.Action, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.registry.DispatchAction(c.Param("tableId"), req.PlayerID, action); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) handleHandActions(c *gin.Context) {
	records, err := s.store.ListActions(c.Request.Context(), c.Param("handId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleHandCommitment(c *gin.Context) {
	commitment, err := s.store.GetDeckCommitment(c.Request.Context(), c.Param("handId"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "commitment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, commitment)
}

// handleVerify is the public fairness check: given a hand id and a revealed
// (seed, order) pair, anyone can confirm the published hash matches. No
// authentication, no session, no table membership required.
func (s *Server) handleVerify(c *gin.Context) {
	var req struct {
		HandID    string   `json:"handId" binding:"required"`
		Seed      string   `json:"seed" binding:"required"`
		CardOrder []string `json:"cardOrder" binding:"required"`
		Hash      string   `json:"hash"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash := req.Hash
	if hash == "" {
		stored, err := s.store.GetDeckCommitment(c.Request.Context(), req.HandID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "commitment not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, errorBody(err))
			return
		}
		hash = stored.Hash
	}

	order := make([]models.Card, 0, len(req.CardOrder))
	for _, raw := range req.CardOrder {
		card, err := models.ParseCard(raw)
		if err != nil {
			// malformed cards are simply an invalid reveal, not a 4xx
			c.JSON(http.StatusOK, gin.H{"handId": req.HandID, "valid": false})
			return
		}
		order = append(order, card)
	}

	valid := engine.Verify(req.HandID, req.Seed, order, hash)
	c.JSON(http.StatusOK, gin.H{"handId": req.HandID, "valid": valid})
}
