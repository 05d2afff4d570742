package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/crusade-dev/crusaded/internal/auth"
	"github.com/crusade-dev/crusaded/internal/campaign"
	"github.com/crusade-dev/crusaded/internal/models"
	"github.com/crusade-dev/crusaded/internal/tasks"
)

const defaultBattleListLimit = 400

// LogBattleRequest represents a battle submission
type LogBattleRequest struct {
	BattleType  string  `json:"battle_type" binding:"required" validate:"required,battletype"`
	LocationID  string  `json:"location_id" binding:"required" validate:"required"`
	WinningSide string  `json:"winning_side" binding:"required" validate:"required,winningside"`
	IsCrushing  bool    `json:"is_crushing"`
	SplashID    *string `json:"splash_target_id"`
	PressureID  *string `json:"pressure_target_id"`
	Notes       string  `json:"notes" validate:"max=2000"`
}

// LogBattleResponse reports the logged battle and the score movement
type LogBattleResponse struct {
	Battle     *models.Battle `json:"battle"`
	ScoreDelta campaign.Score `json:"score_delta"`
	Score      campaign.Score `json:"score"`
}

// BattleDetail is one row of the recent battles list
type BattleDetail struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedByEmail string    `json:"created_by_email"`
	BattleType     string    `json:"battle_type"`
	BattleLabel    string    `json:"battle_label"`
	LocationName   string    `json:"location_name"`
	WinningSide    string    `json:"winning_side"`
	SideLabel      string    `json:"side_label"`
	IsCrushing     bool      `json:"is_crushing"`
	Notes          string    `json:"notes"`
	CanDelete      bool      `json:"can_delete"`
}

// DeleteBattlesRequest selects battles for deletion
type DeleteBattlesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// DeleteBattlesResponse reports what was deleted and what was refused
type DeleteBattlesResponse struct {
	Deleted []string       `json:"deleted"`
	Denied  []string       `json:"denied"`
	Score   campaign.Score `json:"score"`
}

func (s *Server) logBattle(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		s.logger.Error().Msg("Session data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req LogBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := s.validator.Struct(&req); err != nil {
		s.logger.Warn().Err(err).Msg("Request validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	// Draws carry no CP movement, so secondary targets are meaningless
	if req.WinningSide == models.SideDraw {
		req.SplashID = nil
		req.PressureID = nil
	}

	battle, delta, err := s.campaignService.LogBattle(campaign.LogBattleParams{
		CreatedByID:      session.UserID,
		CreatedByEmail:   session.Email,
		BattleType:       req.BattleType,
		LocationID:       req.LocationID,
		WinningSide:      req.WinningSide,
		IsCrushing:       req.IsCrushing,
		SplashTargetID:   req.SplashID,
		PressureTargetID: req.PressureID,
		Notes:            req.Notes,
	})
	if err != nil {
		switch err {
		case campaign.ErrUnknownLocation:
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown location territory"})
		case campaign.ErrVoidBattleOnPlanet, campaign.ErrPlanetBattleInVoid:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.logger.Error().Err(err).Msg("Failed to log battle")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not log battle"})
		}
		return
	}

	score, err := s.campaignService.CurrentScore()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read score")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, LogBattleResponse{
		Battle:     battle,
		ScoreDelta: delta,
		Score:      score,
	})
}

func (s *Server) listBattles(c *gin.Context) {
	session, _ := GetSession(c)

	limit := defaultBattleListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= defaultBattleListLimit {
			limit = n
		}
	}

	var battles []models.Battle
	if err := s.db.Preload("Location").Order("id DESC").Limit(limit).Find(&battles).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list battles")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	details := make([]BattleDetail, len(battles))
	for i, b := range battles {
		details[i] = BattleDetail{
			ID:             b.ID,
			CreatedAt:      b.CreatedAt,
			CreatedByEmail: b.CreatedByEmail,
			BattleType:     b.BattleType,
			BattleLabel:    models.BattleTypeLabels[b.BattleType],
			LocationName:   b.Location.Name,
			WinningSide:    b.WinningSide,
			SideLabel:      models.SideLabels[b.WinningSide],
			IsCrushing:     b.IsCrushing,
			Notes:          b.Notes,
			CanDelete:      canDeleteBattle(session, b.CreatedByEmail),
		}
	}

	c.JSON(http.StatusOK, details)
}

// canDeleteBattle: battle creators may delete their own entries, admins
// may delete anything
func canDeleteBattle(session auth.Session, ownerEmail string) bool {
	if !session.Authenticated {
		return false
	}
	if session.IsAdmin {
		return true
	}
	return session.Email == ownerEmail
}

func (s *Server) deleteBattles(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		s.logger.Error().Msg("Session data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req DeleteBattlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	// Permission check per battle
	var battles []models.Battle
	if err := s.db.Where("id IN ?", req.IDs).Find(&battles).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load battles for deletion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var allowed, denied []string
	for _, b := range battles {
		if canDeleteBattle(session, b.CreatedByEmail) {
			allowed = append(allowed, b.ID)
		} else {
			denied = append(denied, b.ID)
		}
	}

	if len(allowed) == 0 {
		c.JSON(http.StatusForbidden, gin.H{
			"error":  "You can only delete your own battles",
			"denied": denied,
		})
		return
	}

	if err := s.campaignService.DeleteBattles(allowed); err != nil {
		s.logger.Error().Err(err).Msg("Delete and recalculation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete and recalculation failed"})
		return
	}

	score, err := s.campaignService.CurrentScore()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read score")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, DeleteBattlesResponse{
		Deleted: allowed,
		Denied:  denied,
		Score:   score,
	})
}

// triggerRecalculation enqueues a full map recalculation. If the queue is
// unreachable the recalculation runs inline instead.
func (s *Server) triggerRecalculation(c *gin.Context) {
	task, err := tasks.NewRecalculateMapTask("manual")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create recalc task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := s.asynqClient.Enqueue(task, asynq.Queue("low"), asynq.Timeout(10*time.Minute)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to enqueue recalc task, running inline")
		if err := s.campaignService.Recalculate(); err != nil {
			s.logger.Error().Err(err).Msg("Inline recalculation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recalculation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "recalculated"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recalculation queued"})
}
