package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Vector   VectorConfig
	Ai       AIConfig
	Rag      RAGConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	RunLogDir   string // per-run workflow logs, empty disables them
	NatsURL     string
	RedisURL    string
	IngestTopic string
}

type DatabaseConfig struct {
	Connection string
}

type VectorConfig struct {
	Driver      string // "chromem" or "postgres"
	ChromemPath string // empty keeps chromem fully in memory
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
	JinaAPIKey        string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	HuggingFaceKey    string
}

type RAGConfig struct {
	ChunkMaxSize    int
	ChunkOverlap    int
	ChunkMinSize    int
	RemoveStopwords bool
	TopK            int
	MinSimilarity   float64
	ContextDocs     int
	EmbedBatchSize  int
	EmbedWorkers    int
	GenerateTimeout time.Duration
	EmbedCacheTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			RunLogDir:   getEnv("RUN_LOG_DIR", "logs"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:    getEnv("REDIS_URL", ""),
			IngestTopic: getEnv("INGEST_DOCUMENT_TOPIC_NAME", "ingest.document"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Vector: VectorConfig{
			Driver:      getEnv("VECTOR_DRIVER", "chromem"),
			ChromemPath: getEnv("CHROMEM_PATH", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey:    getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Rag: RAGConfig{
			ChunkMaxSize:    getEnvAsInt("RAG_CHUNK_MAX_SIZE", 1000),
			ChunkOverlap:    getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
			ChunkMinSize:    getEnvAsInt("RAG_CHUNK_MIN_SIZE", 100),
			RemoveStopwords: getEnvAsBool("RAG_REMOVE_STOPWORDS", false),
			TopK:            getEnvAsInt("RAG_TOP_K", 5),
			MinSimilarity:   getEnvAsFloat("RAG_MIN_SIMILARITY", 0.3),
			ContextDocs:     getEnvAsInt("RAG_CONTEXT_DOCS", 3),
			EmbedBatchSize:  getEnvAsInt("RAG_EMBED_BATCH_SIZE", 32),
			EmbedWorkers:    getEnvAsInt("RAG_EMBED_WORKERS", 4),
			GenerateTimeout: time.Duration(getEnvAsInt("RAG_GENERATE_TIMEOUT_SECONDS", 120)) * time.Second,
			EmbedCacheTTL:   time.Duration(getEnvAsInt("RAG_EMBED_CACHE_TTL_HOURS", 24)) * time.Hour,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
