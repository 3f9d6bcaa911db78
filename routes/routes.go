// routes/routes.go
package routes

import (
	"checkout_kiosk/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the kiosk API at / and again under /api, which is
// where the kiosk page calls it.
func RegisterRoutes(r *gin.Engine, s *controllers.Srv) {
	itemCtl := controllers.NewItemController(s)
	scanCtl := controllers.NewScanController(s)
	logCtl := controllers.NewCheckoutLogController(s)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.GET("/items", itemCtl.ListItems)
		g.POST("/scan", scanCtl.Scan)
		g.GET("/log", logCtl.ListLog)
	}
}
