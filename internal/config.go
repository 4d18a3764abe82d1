package internal

import (
	"chat-relay/errors"
	"fmt"
	"strings"
	"time"
)

const (
	StoreBadger = "badger"
	StoreMongo  = "mongo"
)

type Config struct {
	Host       string `env:"HOST,default=0.0.0.0"`
	Port       int    `env:"PORT,required=true"`
	HealthPort int    `env:"HEALTH_PORT,default=50051"`
	LogLevel   string `env:"LOG_LEVEL,default=INFO"`

	StoreBackend   string `env:"STORE_BACKEND,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	MongoURI       string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase  string `env:"MONGO_DATABASE,default=chat_relay"`

	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	RecommendIndex string `env:"RECOMMEND_INDEX,default=final_data"`
	SearchSize     int    `env:"SEARCH_SIZE,default=10"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	OpenAIModel     string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	SummaryMaxWords int    `env:"SUMMARY_MAX_WORDS,default=100"`

	LowThreshold    int           `env:"LOW_THRESHOLD,default=30"`
	HighThreshold   int           `env:"HIGH_THRESHOLD,default=50"`
	Cooldown        time.Duration `env:"COOLDOWN,default=5m"`
	MaxSources      int           `env:"MAX_SOURCES,default=3"`
	SystemSender    string        `env:"SYSTEM_SENDER,default=Golden Retriever"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE,default=ko"`
	SendTimeout     time.Duration `env:"SEND_TIMEOUT,default=5s"`

	StatusInterval  time.Duration `env:"STATUS_INTERVAL,default=30s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	CensoredWords    string `env:"CENSORED_WORDS"`
	CensoredDir      string `env:"CENSORED_DIR"`
	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`
	MaxMessageLength int    `env:"MAX_MESSAGE_LENGTH,default=2000"`

	DebugPort int `env:"DEBUG_PORT,default=8081"`
}

// Validate rejects combinations the relay cannot start with.
func (c Config) Validate() error {
	switch {
	case c.StoreBackend != StoreBadger && c.StoreBackend != StoreMongo:
		return fmt.Errorf("%w: STORE_BACKEND must be %q or %q, got %q", errors.ErrUnknownStoreBackend, StoreBadger, StoreMongo, c.StoreBackend)
	case c.LowThreshold <= 0 || c.HighThreshold <= 0:
		return fmt.Errorf("LOW_THRESHOLD and HIGH_THRESHOLD must be positive")
	case c.MaxSources < 0:
		return fmt.Errorf("MAX_SOURCES must not be negative, got %d", c.MaxSources)
	case c.SearchSize <= 0:
		return fmt.Errorf("SEARCH_SIZE must be positive, got %d", c.SearchSize)
	}
	return nil
}

// CensoredList splits CENSORED_WORDS on commas.
func (c Config) CensoredList() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
