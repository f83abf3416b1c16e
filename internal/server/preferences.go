package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/preferences"
)

type kitchenPreferenceResponse struct {
	KitchenID *uuid.UUID      `json:"kitchenId"`
	Source    string          `json:"source"`
	Kitchen   *entity.Kitchen `json:"kitchen,omitempty"`
}

func toPreference(cur preferences.CurrentKitchen) kitchenPreferenceResponse {
	out := kitchenPreferenceResponse{Source: cur.Source, Kitchen: cur.Kitchen}
	if cur.Kitchen != nil {
		id := cur.Kitchen.ID
		out.KitchenID = &id
	}
	return out
}

func (s *Server) currentKitchen(c *gin.Context) {
	cur, err := s.deps.Preferences.Current(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreference(cur))
}

func (s *Server) selectKitchen(c *gin.Context) {
	var req struct {
		KitchenID string `json:"kitchenId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	kid, err := requiredUUID("kitchenId", req.KitchenID)
	if err != nil {
		s.fail(c, err)
		return
	}
	k, err := s.deps.Preferences.Select(c.Request.Context(), userID(c), kid)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toPreference(preferences.CurrentKitchen{Kitchen: k, Source: preferences.SourcePreference}))
}
