package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/items"
)

// Update intents accepted by PUT /api/items/:id.
const (
	actionUpdateQuantity = "updateQuantity"
	actionMarkConsumed   = "markConsumed"
	actionUpdateItem     = "updateItem"
)

type createItemRequest struct {
	KitchenID string `json:"kitchenId"`
	itemFields
}

type updateItemRequest struct {
	Action   string      `json:"action"`
	Quantity *int        `json:"quantity"`
	Item     *itemFields `json:"item"`
}

func (s *Server) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}
	kitchenID, err := requiredUUID("kitchenId", req.KitchenID)
	if err != nil {
		s.fail(c, err)
		return
	}
	f, err := req.fields()
	if err != nil {
		s.fail(c, err)
		return
	}
	it, err := s.deps.Items.Create(c.Request.Context(), userID(c), items.CreateInput{KitchenID: kitchenID, Fields: f})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItem(it))
}

func (s *Server) getItem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	it, err := s.deps.Items.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toItem(it))
}

func (s *Server) updateItem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest(err))
		return
	}

	ctx, uid := c.Request.Context(), userID(c)
	var it *entity.Item
	switch req.Action {
	case actionUpdateQuantity:
		if req.Quantity == nil {
			s.fail(c, common.ValidationErrorf("quantity is required"))
			return
		}
		it, err = s.deps.Items.UpdateQuantity(ctx, uid, id, *req.Quantity)
	case actionMarkConsumed:
		it, err = s.deps.Items.MarkConsumed(ctx, uid, id)
	case actionUpdateItem:
		if req.Item == nil {
			s.fail(c, common.ValidationErrorf("item is required"))
			return
		}
		f, ferr := req.Item.fields()
		if ferr != nil {
			s.fail(c, ferr)
			return
		}
		it, err = s.deps.Items.UpdateItem(ctx, uid, id, f)
	default:
		err = common.ValidationErrorf("action must be one of %s, %s, %s",
			actionUpdateQuantity, actionMarkConsumed, actionUpdateItem)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toItem(it))
}

func (s *Server) deleteItem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.deps.Items.Delete(c.Request.Context(), userID(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) itemHistory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	logs, err := s.deps.Items.History(c.Request.Context(), userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": logs})
}
