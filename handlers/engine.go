// Package handlers exposes the clustering engine over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go-aduan/detection"
	"go-aduan/types"
)

type similarityRequest struct {
	A       types.Report             `json:"a"`
	B       types.Report             `json:"b"`
	Weights *types.SimilarityWeights `json:"weights,omitempty"`
	Config  json.RawMessage          `json:"config,omitempty"`
}

type reportsRequest struct {
	Reports []types.Report  `json:"reports"`
	Config  json.RawMessage `json:"config,omitempty"`
}

type updateRequest struct {
	Clusters []types.Cluster `json:"clusters"`
	// Members holds the reports already assigned to Clusters.
	Members []types.Report  `json:"members"`
	Reports []types.Report  `json:"reports"`
	Config  json.RawMessage `json:"config,omitempty"`
}

type rankRequest struct {
	Clusters []types.Cluster `json:"clusters"`
}

// engineFor returns base, or a copy of it running the request's config.
// Fields missing from raw keep the base value.
func engineFor(base *detection.Engine, raw json.RawMessage) (*detection.Engine, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return base, nil
	}
	cfg := base.Config()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return base.WithConfig(cfg), nil
}

func SimilarityHandler(c *gin.Context, engine *detection.Engine) {
	var req similarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := engineFor(engine, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := e.Config().Validate(); err != nil {
		writeError(c, err)
		return
	}

	score, err := e.Similarity(req.A, req.B, req.Weights)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func MatrixHandler(c *gin.Context, engine *detection.Engine) {
	var req reportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := engineFor(engine, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matrix, err := e.SimilarityMatrix(c.Request.Context(), req.Reports)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": matrix})
}

func ClusterHandler(c *gin.Context, engine *detection.Engine) {
	var req reportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := engineFor(engine, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := e.ClusterReports(c.Request.Context(), req.Reports)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func UpdateHandler(c *gin.Context, engine *detection.Engine) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := engineFor(engine, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := detection.NewReportStore(req.Members...)
	result, err := e.UpdateClusters(c.Request.Context(), req.Clusters, store, req.Reports)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func RankHandler(c *gin.Context, engine *detection.Engine) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := engine.RankClusters(req.Clusters)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": recs})
}

// writeError maps engine failures onto status codes. Caller mistakes are 400,
// everything else is 500.
func writeError(c *gin.Context, err error) {
	var ce *types.ComputationError
	if !errors.As(err, &ce) {
		log.Printf("Handler: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrInvalidConfig),
		errors.Is(err, types.ErrInvalidReports),
		errors.Is(err, types.ErrMissingMember):
		status = http.StatusBadRequest
	default:
		log.Printf("Handler: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": ce.Error(), "issues": ce.Issues})
}
