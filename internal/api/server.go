package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"forumgraph/internal/graph"
)

// NewRouter builds the read-only query API over the loaded graph.
func NewRouter(reader *graph.Reader, log *zap.Logger, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/platforms", func(c *gin.Context) {
			platforms, err := reader.Platforms(c.Request.Context())
			if err != nil {
				log.Error("Failed to list platforms", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list platforms"})
				return
			}
			c.JSON(http.StatusOK, platforms)
		})

		apiGroup.GET("/platforms/:platform/corpora", func(c *gin.Context) {
			corpora, err := reader.Corpora(c.Request.Context(), c.Param("platform"))
			if err != nil {
				log.Error("Failed to list corpora", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list corpora"})
				return
			}
			c.JSON(http.StatusOK, corpora)
		})

		apiGroup.GET("/platforms/:platform/cooccurrence", func(c *gin.Context) {
			tag := c.Query("tag")
			if tag == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "tag query parameter is required"})
				return
			}
			pairs, err := reader.CooccurringCodes(c.Request.Context(), c.Param("platform"), tag)
			if err != nil {
				log.Error("Failed to compute co-occurrence", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute co-occurrence"})
				return
			}
			c.JSON(http.StatusOK, pairs)
		})

		apiGroup.GET("/platforms/:platform/interactions", func(c *gin.Context) {
			tag := c.Query("tag")
			if tag == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "tag query parameter is required"})
				return
			}
			interactions, err := reader.InteractionGraph(c.Request.Context(), c.Param("platform"), tag)
			if err != nil {
				log.Error("Failed to compute interaction graph", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute interaction graph"})
				return
			}
			c.JSON(http.StatusOK, interactions)
		})
	}

	return router
}

// Serve runs the API server until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
