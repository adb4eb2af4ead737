package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type classifier interface {
	Classify(ctx context.Context, imageData string) ([]rawPrediction, error)
}

type completer interface {
	Complete(ctx context.Context, messages []chatMessage, diag *DiagnosisResult) (string, error)
}

type resultStore interface {
	HealthChecker
	InsertAnalysis(ctx context.Context, rec analysisRecord) error
}

type Config struct {
	Port           string
	DatabaseURL    string
	PlantAPIKey    string
	DeepSeekAPIKey string
	EnableDB       bool

	// ConfidenceThreshold drops candidates below it (0 = keep all);
	// MaxResults caps the returned candidate list. Both varied across
	// product iterations, so they stay configurable.
	ConfidenceThreshold float64
	MaxResults          int
}

type detectRequest struct {
	FileData string `json:"fileData"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
}

type chatRequest struct {
	Messages    []chatMessage    `json:"messages"`
	DiseaseInfo *DiagnosisResult `json:"diseaseInfo"`
}

func main() {
	gin.SetMode(getEnv("GIN_MODE", "release"))

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	var store resultStore
	if cfg.EnableDB {
		s, err := newAnalysisStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer s.Close()
		store = s
	}

	var llm completer
	if cfg.DeepSeekAPIKey != "" {
		llm = newDeepSeekClient(cfg.DeepSeekAPIKey)
	}

	router := setupRouter(cfg, newPlantClassifier(cfg.PlantAPIKey), llm, store)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Printf("server listening on :%s", cfg.Port)
	waitForShutdown(server)
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PlantAPIKey:    os.Getenv("PLANT_API_KEY"),
		DeepSeekAPIKey: os.Getenv("DEEPSEEK_API_KEY"),
		EnableDB:       strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		MaxResults:     defaultMaxResults,
	}

	if raw := os.Getenv("CONFIDENCE_THRESHOLD"); raw != "" {
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil || t < 0 || t > 1 {
			return nil, fmt.Errorf("CONFIDENCE_THRESHOLD must be a number in [0,1], got %q", raw)
		}
		cfg.ConfidenceThreshold = t
	}

	if raw := os.Getenv("MAX_RESULTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MAX_RESULTS must be a positive integer, got %q", raw)
		}
		cfg.MaxResults = n
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	return cfg, nil
}

func setupRouter(cfg *Config, cls classifier, llm completer, store resultStore) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		gin.Recovery(),
		limitBodySize(8<<20), // base64 image payloads
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "apikey", "x-client-info"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.POST("/api/detect", func(c *gin.Context) {
		var payload detectRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if strings.TrimSpace(payload.FileData) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": errMissingInput.Error()})
			return
		}

		preds, err := cls.Classify(c.Request.Context(), payload.FileData)
		if err != nil {
			log.Printf("classification error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to analyze image",
				"details": err.Error(),
			})
			return
		}

		result := normalizeDiagnosis(preds, normalizeOptions{
			Threshold:  cfg.ConfidenceThreshold,
			MaxResults: cfg.MaxResults,
		})

		// Best-effort append; a store failure never fails the analysis.
		if store != nil && len(result.Diseases) > 0 {
			top := result.Diseases[0]
			rec := analysisRecord{
				ID:         uuid.New(),
				ImageRef:   payload.Filename,
				Disease:    top.Name,
				Confidence: top.Probability,
			}
			if err := store.InsertAnalysis(c.Request.Context(), rec); err != nil {
				log.Printf("analysis insert failed: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
	})

	router.POST("/api/chat", func(c *gin.Context) {
		var payload chatRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if len(payload.Messages) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no messages provided"})
			return
		}

		latest := payload.Messages[len(payload.Messages)-1].Content
		c.JSON(http.StatusOK, gin.H{"response": generateReply(latest, payload.DiseaseInfo)})
	})

	router.POST("/api/chat/expert", func(c *gin.Context) {
		if llm == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat assistant not configured"})
			return
		}

		var payload chatRequest
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		if len(payload.Messages) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no messages provided"})
			return
		}

		reply, err := llm.Complete(c.Request.Context(), payload.Messages, payload.DiseaseInfo)
		if err != nil {
			log.Printf("synthesis error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"response": reply})
	})

	return router
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
