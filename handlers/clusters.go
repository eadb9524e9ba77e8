package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-aduan/db"
	"go-aduan/types"
)

// ClusterReader is implemented by db.FirestoreStore.
type ClusterReader interface {
	ActiveClusters(ctx context.Context) ([]types.Cluster, error)
	Cluster(ctx context.Context, id string) (types.Cluster, error)
}

// Maintainer is implemented by cronjobs.Jobs.
type Maintainer interface {
	RunMaintenance(ctx context.Context) (*types.UpdateResult, error)
}

func ListClustersHandler(c *gin.Context, store ClusterReader) {
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cluster store is not configured"})
		return
	}

	clusters, err := store.ActiveClusters(c.Request.Context())
	if err != nil {
		log.Printf("Handler: ERROR fetching active clusters: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve clusters",
		})
		return
	}

	if clusters == nil {
		clusters = []types.Cluster{}
	}
	c.JSON(http.StatusOK, gin.H{"data": clusters})
}

func GetClusterHandler(c *gin.Context, store ClusterReader) {
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cluster store is not configured"})
		return
	}

	cluster, err := store.Cluster(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cluster not found"})
		return
	}
	if err != nil {
		log.Printf("Handler: ERROR fetching cluster %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cluster"})
		return
	}
	c.JSON(http.StatusOK, cluster)
}

// MaintainHandler runs one maintenance pass outside the cron schedule.
func MaintainHandler(c *gin.Context, m Maintainer) {
	if m == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "maintenance is not configured"})
		return
	}

	result, err := m.RunMaintenance(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
