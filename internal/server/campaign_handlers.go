package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crusade-dev/crusaded/internal/campaign"
	"github.com/crusade-dev/crusaded/internal/models"
)

// TerritoryDetail is one map tile with derived side and status labels
type TerritoryDetail struct {
	ID       string `json:"id"`
	Q        int    `json:"q"`
	R        int    `json:"r"`
	Name     string `json:"name"`
	IsPlanet bool   `json:"is_planet"`
	CP       int    `json:"cp"`
	Side     string `json:"side"`
	Status   string `json:"status"`
}

// DashboardResponse backs the campaign dashboard page
type DashboardResponse struct {
	Score       campaign.Score    `json:"score"`
	Territories []TerritoryDetail `json:"territories"`
}

func (s *Server) loadTerritories() ([]TerritoryDetail, error) {
	var territories []models.Territory
	if err := s.db.Order("is_planet DESC, name ASC").Find(&territories).Error; err != nil {
		return nil, err
	}

	details := make([]TerritoryDetail, len(territories))
	for i, t := range territories {
		details[i] = TerritoryDetail{
			ID:       t.ID,
			Q:        t.Q,
			R:        t.R,
			Name:     t.Name,
			IsPlanet: t.IsPlanet,
			CP:       t.CP,
			Side:     campaign.SideFromCP(t.CP),
			Status:   campaign.StatusFromCP(t.CP),
		}
	}
	return details, nil
}

func (s *Server) listTerritories(c *gin.Context) {
	details, err := s.loadTerritories()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list territories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) getDashboard(c *gin.Context) {
	details, err := s.loadTerritories()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load territories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	score, err := s.campaignService.CurrentScore()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read score")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Score:       score,
		Territories: details,
	})
}

// NeighborTarget is an adjacent tile eligible for splash or pressure
type NeighborTarget struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPlanet bool   `json:"is_planet"`
}

// LogBattleFormResponse backs the battle submission page: the battle type
// catalog, eligible locations, and (when a location is selected) the
// adjacent splash/pressure candidates.
type LogBattleFormResponse struct {
	BattleTypes     map[string]string `json:"battle_types"`
	Planets         []TerritoryDetail `json:"planets"`
	SpaceTiles      []TerritoryDetail `json:"space_tiles"`
	SplashTargets   []NeighborTarget  `json:"splash_targets,omitempty"`
	PressureTargets []NeighborTarget  `json:"pressure_targets,omitempty"`
}

func (s *Server) getLogBattleForm(c *gin.Context) {
	details, err := s.loadTerritories()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load territories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	resp := LogBattleFormResponse{BattleTypes: models.BattleTypeLabels}
	for _, t := range details {
		if t.IsPlanet {
			resp.Planets = append(resp.Planets, t)
		} else {
			resp.SpaceTiles = append(resp.SpaceTiles, t)
		}
	}

	// Adjacency targets for a selected location
	if locationID := c.Query("location_id"); locationID != "" {
		var loc models.Territory
		if err := s.db.Where("id = ?", locationID).First(&loc).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown location territory"})
			return
		}

		for _, n := range campaign.Neighbors(loc.Q, loc.R) {
			var t models.Territory
			if err := s.db.Where("q = ? AND r = ?", n[0], n[1]).First(&t).Error; err != nil {
				continue
			}
			target := NeighborTarget{ID: t.ID, Name: t.Name, IsPlanet: t.IsPlanet}
			if t.IsPlanet {
				resp.PressureTargets = append(resp.PressureTargets, target)
			} else {
				resp.SplashTargets = append(resp.SplashTargets, target)
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) getRules(c *gin.Context) {
	c.JSON(http.StatusOK, s.rulesDoc)
}

// getMeta backs the sidebar: app title, session identity, security flags,
// and the pages visible to this session
func (s *Server) getMeta(c *gin.Context) {
	session, _ := GetSession(c)

	c.JSON(http.StatusOK, gin.H{
		"title":            s.config.AppTitle,
		"version":          s.version,
		"session":          session,
		"insecure_cookies": s.config.InsecureCookies(),
		"pages":            VisiblePages(session),
	})
}
