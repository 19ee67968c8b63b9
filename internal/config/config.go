package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	CorpusPath    string
	CorpusPrewarm bool

	MaxUploadBytes int64

	SimilarityThreshold float64
	AgingMinSamples     int

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxConcurrent      int
	APIBackpressureWaitMS int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		CorpusPath:    mustEnv("CORPUS_PATH", "./data/corpus"),
		CorpusPrewarm: mustEnvBool("CORPUS_PREWARM", true),

		MaxUploadBytes: int64(mustEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		SimilarityThreshold: mustEnvFloat("ANALYZER_SIMILARITY_THRESHOLD", 0.08),
		AgingMinSamples:     mustEnvInt("ANALYZER_AGING_MIN_SAMPLES", 6),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 1),
		APIMaxConcurrent:      mustEnvInt("API_MAX_CONCURRENT", 0),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 200),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
