package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.deps.Categories.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if cats == nil {
		cats = []*entity.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	cat, err := s.deps.Categories.Create(c.Request.Context(), entity.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) seedCategories(c *gin.Context) {
	n, err := s.deps.Categories.Seed(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inserted": n})
}
