package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go-aduan/detection"
	"go-aduan/handlers"
)

// SetupRouter wires the HTTP API. store and maintainer may be nil when the
// service runs without Firestore; their routes then answer 503.
func SetupRouter(engine *detection.Engine, store handlers.ClusterReader, maintainer handlers.Maintainer, clientURL string) *gin.Engine {
	r := gin.Default()

	if clientURL != "" {
		r.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", clientURL)
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusNoContent)
				return
			}
			c.Next()
		})
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to Go Aduan!",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/aduan")
	{
		api.POST("/similarity", func(c *gin.Context) {
			handlers.SimilarityHandler(c, engine)
		})
		api.POST("/matrix", func(c *gin.Context) {
			handlers.MatrixHandler(c, engine)
		})
		api.POST("/cluster", func(c *gin.Context) {
			handlers.ClusterHandler(c, engine)
		})
		api.POST("/update", func(c *gin.Context) {
			handlers.UpdateHandler(c, engine)
		})
		api.POST("/rank", func(c *gin.Context) {
			handlers.RankHandler(c, engine)
		})

		api.GET("/clusters", func(c *gin.Context) {
			handlers.ListClustersHandler(c, store)
		})
		api.GET("/clusters/:id", func(c *gin.Context) {
			handlers.GetClusterHandler(c, store)
		})
		api.POST("/maintain", func(c *gin.Context) {
			handlers.MaintainHandler(c, maintainer)
		})
	}

	return r
}
