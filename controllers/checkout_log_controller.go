// controllers/checkout_log_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutLogController struct{ *Srv }

func NewCheckoutLogController(s *Srv) *CheckoutLogController { return &CheckoutLogController{Srv: s} }

// GET /log?limit=50
func (lc *CheckoutLogController) ListLog(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number", "type": "error"})
		return
	}
	entries, err := lc.Repo.ListLog(c.Request.Context(), limit)
	if err != nil {
		lc.Log.Error("list checkout log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve checkout log from database"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
