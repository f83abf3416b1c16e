package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/export"
	"github.com/joseph-ayodele/pantry-tracker/internal/kitchens"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

type kitchenRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"`
}

func (r kitchenRequest) input() kitchens.Input {
	return kitchens.Input{
		Name:        r.Name,
		Location:    r.Location,
		Description: r.Description,
		IsDefault:   r.IsDefault,
	}
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) listKitchens(c *gin.Context) {
	ks, err := s.deps.Kitchens.List(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kitchens": ks})
}

func (s *Server) createKitchen(c *gin.Context) {
	var req kitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	k, err := s.deps.Kitchens.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, k)
}

func (s *Server) getKitchen(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	k, err := s.deps.Kitchens.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (s *Server) updateKitchen(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req kitchenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	k, err := s.deps.Kitchens.Update(c.Request.Context(), userID(c), id, req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (s *Server) deleteKitchen(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.deps.Kitchens.Delete(c.Request.Context(), userID(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) setDefaultKitchen(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	k, err := s.deps.Kitchens.SetDefault(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (s *Server) kitchenStats(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	stats, err := s.deps.Kitchens.Stats(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) kitchenExpiry(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	groups, err := s.deps.Kitchens.Expiry(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": toExpiryGroups(groups)})
}

func (s *Server) refreshKitchenStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	n, err := s.deps.Kitchens.RefreshStatus(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (s *Server) listKitchenItems(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	filter := repository.ItemFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("q")),
	}
	list, err := s.deps.Items.List(c.Request.Context(), userID(c), id, filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toItems(list)})
}

func (s *Server) exportKitchen(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	k, err := s.deps.Kitchens.Get(ctx, userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.deps.Items.List(ctx, userID(c), id, repository.ItemFilter{})
	if err != nil {
		s.fail(c, err)
		return
	}
	data, err := s.deps.Export.InventoryXLSX(k, list)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+s.deps.Export.FilenameFor(k)+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}
