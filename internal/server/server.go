package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"seat-assistant/config"
	"seat-assistant/internal/db"
	"seat-assistant/internal/handlers"
	"seat-assistant/internal/repositories"
	"seat-assistant/internal/routes"
	"seat-assistant/internal/services"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires configuration, collaborator clients, services and routes
func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	cfg := loadAssistantConfig(logger)

	// Collaborator clients are constructed once and shared read-only
	llm := services.NewOpenAIService(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_CHAT_MODEL"), logger)
	vectorRepo := initializeVectorRepository(logger)
	embeddingCache := initializeEmbeddingCache(logger)

	classifier := services.NewIntentClassifier(llm, cfg, logger)
	retriever := services.NewRetrievalService(llm, vectorRepo, embeddingCache, cfg, logger)
	responder := services.NewResponderService(llm, cfg, logger)
	sessions := services.NewSessionStore()

	assistant := services.NewAssistantService(classifier, retriever, responder, sessions, cfg, logger)

	h := &routes.Handlers{
		Health:      handlers.HealthCheckHandler,
		Home:        handlers.HomeHandler,
		ChatHandler: handlers.NewChatHandler(assistant, llm, logger),
		InfoHandler: handlers.NewInfoHandler(cfg, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return &http.Server{
		Addr:    addr,
		Handler: corsMiddleware(router),
	}
}

// loadAssistantConfig reads the business-heuristic config, preferring the
// JSON file named by ASSISTANT_CONFIG over the built-in defaults
func loadAssistantConfig(logger *log.Logger) *config.AssistantConfig {
	path := os.Getenv("ASSISTANT_CONFIG")
	if path == "" {
		return config.DefaultAssistantConfig()
	}

	cfg, err := config.LoadAssistantConfig(path)
	if err != nil {
		logger.Printf("Failed to load assistant config from %s: %v", path, err)
		logger.Println("   Falling back to built-in defaults")
		return config.DefaultAssistantConfig()
	}

	logger.Printf("Loaded assistant config from %s", path)
	return cfg
}

// initializeVectorRepository connects to Pinecone. A failed heartbeat is
// logged but not fatal: searches surface the failure copy at runtime while
// the static intents keep working.
func initializeVectorRepository(logger *log.Logger) repositories.VectorRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pineconeConfig := db.PineconeConfig{
		IndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		APIKey:    os.Getenv("PINECONE_API_KEY"),
		Namespace: os.Getenv("PINECONE_NAMESPACE"),
		Timeout:   30 * time.Second,
	}

	logger.Printf("Connecting to Pinecone index: %s", pineconeConfig.IndexHost)
	client := db.NewPineconeClient(pineconeConfig)

	if err := client.Heartbeat(ctx); err != nil {
		logger.Printf("Pinecone connection check failed: %v", err)
		logger.Println("   Search turns will fail until the index is reachable")
	} else {
		logger.Println("Pinecone connected successfully")
	}

	return repositories.NewPineconeVectorRepository(client)
}

// initializeEmbeddingCache connects to Redis; when Redis is unreachable the
// cache degrades to a no-op and every query is embedded fresh.
func initializeEmbeddingCache(logger *log.Logger) repositories.EmbeddingCache {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)

	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		logger.Printf("Failed to create Redis client: %v", err)
		logger.Println("   Embedding cache disabled")
		return repositories.NoopEmbeddingCache{}
	}

	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("Redis connection failed: %v", err)
		logger.Println("   Embedding cache disabled")
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return repositories.NoopEmbeddingCache{}
	}
	logger.Println("Redis connected successfully")

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("EMBEDDING_CACHE_TTL_HOURS"); ttlStr != "" {
		if hours, err := strconv.Atoi(ttlStr); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	return repositories.NewRedisEmbeddingCache(redisClient.GetClient(), ttl)
}

// getRedisConfig reads Redis configuration from environment variables
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	return config
}
