package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string

	// Completion provider (OpenRouter exposes an OpenAI-compatible API)
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	Model             string

	// WhatsApp gateway
	GatewayBaseURL string
	GatewayToken   string

	// Transcription
	WhisperScript   string
	AssemblyAIKey   string
	AssemblyBaseURL string

	// Price catalog (Economiza Alagoas)
	PriceAPIURL   string
	PriceAPIToken string
	MerchantCNPJ  string

	// Storage
	DataDir      string
	OffersDir    string
	TempDir      string
	SessionFile  string
	PersonaFile  string
	DatabaseURL  string
	SaveDebounce time.Duration

	// Operator notification recipient (e.g. 5511999998888@c.us)
	AttendantID string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:              getEnvDefault("PORT", "8080"),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:             getEnvDefault("IA_MODEL", "meta-llama/llama-4-maverick:free"),
		GatewayBaseURL:    getEnvDefault("GATEWAY_BASE_URL", "http://localhost:3000"),
		GatewayToken:      os.Getenv("GATEWAY_TOKEN"),
		WhisperScript:     getEnvDefault("WHISPER_SCRIPT", "./transcrever.py"),
		AssemblyAIKey:     os.Getenv("ASSEMBLYAI_API_KEY"),
		AssemblyBaseURL:   getEnvDefault("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com/v2"),
		PriceAPIURL:       getEnvDefault("PRICE_API_URL", "http://api.sefaz.al.gov.br/sfz-economiza-alagoas-api/api/public/produto/pesquisa"),
		PriceAPIToken:     os.Getenv("PRICE_API_TOKEN"),
		MerchantCNPJ:      getEnvDefault("MERCHANT_CNPJ", "07771407000161"),
		DataDir:           getEnvDefault("DATA_DIR", "data"),
		OffersDir:         getEnvDefault("OFFERS_DIR", "ofertas"),
		TempDir:           getEnvDefault("TEMP_DIR", "temp"),
		SessionFile:       getEnvDefault("SESSION_FILE", "data/user_data.json"),
		PersonaFile:       getEnvDefault("PERSONA_FILE", "prompts/persona.yaml"),
		DatabaseURL:       os.Getenv("DB_URL"),
		SaveDebounce:      getEnvDurationDefault("SAVE_DEBOUNCE_MS", 1000*time.Millisecond),
		AttendantID:       os.Getenv("ATTENDANT_ID"),
	}
	if cfg.OpenRouterAPIKey == "" {
		log.Println("warning: OPENROUTER_API_KEY is not set; completion calls will fail until provided")
	}
	if cfg.AttendantID == "" {
		log.Println("warning: ATTENDANT_ID is not set; human handoff confirmations will not be forwarded")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
		log.Printf("warning: invalid %s=%q, using default", key, v)
	}
	return def
}
