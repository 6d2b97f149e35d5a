package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-flavor-inventory/model"
)

// Routes holds every handler group mounted by NewRouter.
type Routes struct {
	Inventory *InventoryHandlers
	Stores    *EntityHandlers[*model.Store]
	Employees *EntityHandlers[*model.Employee]
	// Metrics is mounted at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
}

// NewRouter builds the gin engine serving the API.
func NewRouter(r Routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	inventory := router.Group("/inventory")
	{
		inventory.POST("/upload", r.Inventory.Upload)
		inventory.GET("", r.Inventory.List)
		inventory.POST("", r.Inventory.Create)
		inventory.GET("/:id", r.Inventory.Get)
		inventory.PUT("/:id", r.Inventory.Update)
		inventory.DELETE("/:id", r.Inventory.Delete)
	}

	mountEntity(router, r.Stores)
	mountEntity(router, r.Employees)

	if r.Metrics != nil && r.MetricsPath != "" {
		router.GET(r.MetricsPath, gin.WrapH(r.Metrics))
	}

	return router
}

func mountEntity[T model.Named](router *gin.Engine, h *EntityHandlers[T]) {
	group := router.Group(h.Base)
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
