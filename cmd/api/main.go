package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/volfir1/EcoPulseBackend/config"
	"github.com/volfir1/EcoPulseBackend/dataset"
	"github.com/volfir1/EcoPulseBackend/forecast"
	"github.com/volfir1/EcoPulseBackend/handlers"
	"github.com/volfir1/EcoPulseBackend/middleware"
	"github.com/volfir1/EcoPulseBackend/recommend"
	"github.com/volfir1/EcoPulseBackend/services"
	"github.com/volfir1/EcoPulseBackend/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st := store.New(cfg.Mongo, log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Verify the store is reachable before serving.
	if _, err := st.FindAll(startupCtx, store.CollectionPredictive); err != nil {
		log.Fatalf("Failed to reach document store: %v", err)
	}

	cache, err := services.NewCacheService(cfg.Redis, log)
	if err != nil {
		log.Warnf("Redis unavailable, caching and live updates disabled: %v", err)
	}
	defer cache.Close()

	registry := forecast.NewRegistry(cfg.Models.Dir)
	trainer := forecast.NewTrainer(registry, log)
	loader := dataset.NewLoader(st, store.CollectionPredictive, log)
	reconciler := forecast.NewReconciler(loader, registry, log)

	predictionHandler := handlers.NewPredictionHandler(reconciler, trainer, loader, cache, log, cfg.Models.TrainTimeout)
	recordsHandler := handlers.NewRecordsHandler(st, loader, trainer, cache, log, cfg.Models.TrainTimeout)

	peerHandler := handlers.NewPeerHandler(st, cache, cfg.Mirror.Dir, log)
	if err := peerHandler.Reload(startupCtx); err != nil {
		log.Warnf("Initial peer-to-peer snapshot load failed: %v", err)
	}

	// ROI curves are fit once, over the recommendation collection's actual
	// records.
	recommendationRecords, err := st.FindActualOnly(startupCtx, store.CollectionRecommendation)
	if err != nil {
		log.Fatalf("Failed to load recommendation history: %v", err)
	}
	calculator, err := recommend.NewCalculator(dataset.New(recommendationRecords), log)
	if err != nil {
		log.Fatalf("Failed to fit ROI curves: %v", err)
	}
	recommendationHandler := handlers.NewRecommendationHandler(st, calculator, cfg.Mirror.Dir, log)

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))
	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "UP",
			"message": "EcoPulse API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/predictions/:target", predictionHandler.GetSeries)
		api.POST("/predictions/train", predictionHandler.Train)

		api.GET("/records", recordsHandler.List)
		api.POST("/records", recordsHandler.Create)

		api.GET("/peertopeer", peerHandler.GetSeries)
		api.POST("/peertopeer/records", peerHandler.CreateRecord)

		api.GET("/recommendations", recommendationHandler.GetRecommendations)
		api.GET("/recommendations/records", recommendationHandler.ListRecords)
		api.POST("/recommendations/records", recommendationHandler.CreateRecord)
	}

	router.GET("/ws/live", handlers.LiveWebSocket(cache, log))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
