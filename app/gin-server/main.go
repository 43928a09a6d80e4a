package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hirevox/hirevox/config"
	"github.com/hirevox/hirevox/internal/api/handlers"
	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/api/routes"
	"github.com/hirevox/hirevox/internal/callcontext"
	"github.com/hirevox/hirevox/internal/logger"
	"github.com/hirevox/hirevox/internal/models"
	"github.com/hirevox/hirevox/internal/providers/ai"
	"github.com/hirevox/hirevox/internal/providers/stt"
	telprovider "github.com/hirevox/hirevox/internal/providers/telephony"
	mongorepo "github.com/hirevox/hirevox/internal/repositories/mongo"
	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/storage"
	"github.com/hirevox/hirevox/internal/telephony"
	"github.com/hirevox/hirevox/internal/utils"
	"github.com/hirevox/hirevox/internal/workers"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	l := logger.New()
	ctx := context.Background()

	// Datastores
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.MigratePostgres(); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	// Mongo is the optional call-event journal; the call flow runs without it
	var events mongorepo.CallEventRepository
	if os.Getenv("MONGO_URI") != "" {
		if err := config.InitMongo(); err != nil {
			log.Fatalf("MongoDB init error: %v", err)
		}
		if err := config.EnsureMongoIndexes(); err != nil {
			log.Fatalf("MongoDB index error: %v", err)
		}
		events = mongorepo.NewCallEventRepo(config.MongoClient.Database(config.MongoDBName()))
		l.Info("MongoDB connected")
	} else {
		l.Warn("MONGO_URI not set; call event journal disabled")
	}

	// Providers
	aiProvider, err := ai.NewVertexGemini(ctx,
		os.Getenv("GCP_PROJECT_ID"),
		env("GCP_LOCATION", "us-central1"),
		env("GEMINI_MODEL", "gemini-1.5-flash"),
	)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer aiProvider.Close()

	var sttProvider stt.Provider
	if os.Getenv("STT_DISABLED") != "true" {
		sp, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			l.WithError(err).Warn("Speech-to-Text init failed; recovery transcription disabled")
		} else {
			sttProvider = sp
			defer sp.Close()
		}
	}

	var archive storage.Archiver
	var signer storage.Signer
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		ga, err := storage.NewGCSArchive(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		archive = ga
		signer = ga
		defer ga.Close()
	} else {
		l.Warn("GCS_BUCKET not set; recording archive disabled")
	}

	calls := telprovider.NewTwilio(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_FROM_NUMBER"),
	)

	// Repositories
	db := config.PostgresDB
	campaignRepo := pgrepo.NewCampaignRepo(db)
	questionRepo := pgrepo.NewQuestionRepo(db)
	candidateRepo := pgrepo.NewCandidateRepo(db)
	interviewRepo := pgrepo.NewInterviewRepo(db)
	responseRepo := pgrepo.NewResponseRepo(db)
	recruiterRepo := pgrepo.NewRecruiterRepo(db)

	// Call-context store and scoring pipeline
	store := callcontext.NewRedisStore(config.RedisClient, callcontext.DefaultTTL)
	dispatcher := scoring.NewRedisDispatcher(config.RedisClient)
	gen := telephony.NewGenerator(os.Getenv("TTS_VOICE"))

	publicBaseURL := os.Getenv("PUBLIC_BASE_URL")
	if publicBaseURL == "" {
		log.Fatal("PUBLIC_BASE_URL environment variable is not set")
	}
	jwtSecret := os.Getenv("APP_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("APP_JWT_SECRET environment variable is not set")
	}

	// Services
	recorder := services.NewResponseRecorder(responseRepo)
	scoringSvc := services.NewScoringService(
		responseRepo, questionRepo, interviewRepo, candidateRepo,
		aiProvider, sttProvider, archive, l,
	)
	callSvc := services.NewCallService(
		interviewRepo, candidateRepo, questionRepo,
		store, recorder, dispatcher, gen, events, l,
	)
	campaignSvc := services.NewCampaignService(campaignRepo, candidateRepo, interviewRepo, aiProvider)
	interviewSvc := services.NewInterviewService(
		interviewRepo, candidateRepo, questionRepo, responseRepo,
		calls, events, signer, publicBaseURL, l,
	)
	authSvc := services.NewAuthService(recruiterRepo, jwtSecret)

	// seed the first admin account so registration (admin-gated) is reachable
	if email, pass := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD"); email != "" && pass != "" {
		if _, err := authSvc.Register(ctx, email, "Admin", pass, models.RoleAdmin); err != nil {
			if !utils.IsCode(err, utils.CodeConflict) {
				l.WithError(err).Warn("admin seed failed")
			}
		} else {
			l.WithField("email", email).Info("admin account seeded")
		}
	}

	// Background scoring workers
	pool := &workers.ScoringWorkerPool{
		Redis:     config.RedisClient,
		Scoring:   scoringSvc,
		Responses: responseRepo,
		Logger:    l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("scoring worker start error: %v", err)
	}
	l.Info("scoring workers started")

	// HTTP server
	gin.SetMode(env("GIN_MODE", gin.ReleaseMode))
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret: jwtSecret,
		Auth:      handlers.NewAuthHandler(authSvc),
		Campaign:  handlers.NewCampaignHandler(campaignSvc),
		Interview: handlers.NewInterviewHandler(interviewSvc),
		Webhook:   handlers.NewWebhookHandler(callSvc, l),
		Monitor:   handlers.NewMonitorHandler(interviewSvc, config.RedisClient),
	})

	port := env("PORT", "8080")
	l.WithField("port", port).Info("server listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
