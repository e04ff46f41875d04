package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/config"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/graph"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/core/model"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/driver"
	"github.com/whisperengine-ai/whisperengine-v2-sub002/internal/store"
)

// Server exposes the memory engine to the conversation handler over HTTP.
type Server struct {
	Integrator *core.Integrator
	closers    []func() error
}

// NewServer wires the engine from config. A missing graph backend is a
// warning, not a failure: the engine runs store-only.
func NewServer(cfg *config.Config) (*Server, error) {
	s, err := store.NewSQLiteStore(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	rels := buildRelationships(cfg, s)
	it := core.NewIntegrator(s, rels, nil, cfg.Integrate)

	return &Server{
		Integrator: it,
		closers:    []func() error{s.Close},
	}, nil
}

func buildRelationships(cfg *config.Config, s store.Store) graph.Relationships {
	if cfg.Graph.Disabled {
		log.Println("Graph capability disabled by configuration; running store-only")
		return graph.NewNoopRelationships(s)
	}

	d, err := driver.NewNeo4jDriver(context.Background(), cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
	if err != nil {
		log.Printf("Warning: graph backend unreachable (%v); running store-only", err)
		return graph.NewNoopRelationships(s)
	}
	if err := d.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build graph indices: %v", err)
	}
	return graph.NewGraphRelationships(s, d, cfg.Relate, cfg.Graph.Timeout())
}

func (s *Server) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/context", s.Context)
	r.POST("/exchange", s.Exchange)
	r.POST("/reflect", s.Reflect)
	r.POST("/seed", s.Seed)
	r.POST("/cluster", s.Cluster)
	r.GET("/stats/:owner", s.Stats)
	r.GET("/network/:owner", s.Network)
	r.POST("/maintenance/cleanup", s.Cleanup)
	r.POST("/maintenance/rebuild", s.Rebuild)

	return r
}

type ContextRequest struct {
	OwnerID string   `json:"owner_id" binding:"required"`
	Themes  []string `json:"themes"`
}

func (s *Server) Context(c *gin.Context) {
	var req ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Integrator.ContextFor(c.Request.Context(), req.OwnerID, req.Themes))
}

type ExchangeRequest struct {
	OwnerID       string                 `json:"owner_id" binding:"required"`
	UserText      string                 `json:"user_text"`
	CharacterText string                 `json:"character_text"`
	Signal        *model.EmotionalSignal `json:"signal"`
}

func (s *Server) Exchange(c *gin.Context) {
	var req ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	m, stored := s.Integrator.EvaluateExchange(c.Request.Context(),
		req.OwnerID, req.UserText, req.CharacterText, req.Signal)
	if !stored {
		c.JSON(http.StatusOK, gin.H{"stored": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": true, "memory": m})
}

type ReflectRequest struct {
	OwnerID string   `json:"owner_id" binding:"required"`
	Themes  []string `json:"themes"`
}

func (s *Server) Reflect(c *gin.Context) {
	var req ReflectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	m, ok := s.Integrator.Reflect(c.Request.Context(), req.OwnerID, req.Themes)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"stored": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stored": true, "memory": m})
}

func (s *Server) Seed(c *gin.Context) {
	var profile model.CharacterProfile
	if err := c.ShouldBindJSON(&profile); err != nil || profile.OwnerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	n := s.Integrator.SeedBackground(c.Request.Context(), profile)
	c.JSON(http.StatusOK, gin.H{"seeded": n})
}

type ClusterRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	Theme   string `json:"theme" binding:"required"`
}

func (s *Server) Cluster(c *gin.Context) {
	var req ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	cluster, ok := s.Integrator.ClusterByTheme(c.Request.Context(), req.OwnerID, req.Theme)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"created": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": true, "cluster": cluster})
}

func (s *Server) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Integrator.Statistics(c.Request.Context(), c.Param("owner")))
}

func (s *Server) Network(c *gin.Context) {
	c.JSON(http.StatusOK, s.Integrator.Analyze(c.Request.Context(), c.Param("owner")))
}

type CleanupRequest struct {
	OwnerID     string  `json:"owner_id" binding:"required"`
	MaxAgeDays  int     `json:"max_age_days" binding:"required"`
	WeightBelow float64 `json:"weight_below"`
	RecallBelow int     `json:"recall_below"`
}

func (s *Server) Cleanup(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	n := s.Integrator.CleanupRetention(c.Request.Context(), req.OwnerID, store.RetentionPolicy{
		MaxAgeDays:  req.MaxAgeDays,
		WeightBelow: req.WeightBelow,
		RecallBelow: req.RecallBelow,
	})
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type RebuildRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

func (s *Server) Rebuild(c *gin.Context) {
	var req RebuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	n := s.Integrator.RebuildForOwner(c.Request.Context(), req.OwnerID)
	c.JSON(http.StatusOK, gin.H{"edges": n})
}
