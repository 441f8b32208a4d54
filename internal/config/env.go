package config

import (
	"github.com/JaimeStill/agent-chat/internal/providers"
	"github.com/JaimeStill/agent-chat/internal/tokens"
	"github.com/JaimeStill/agent-chat/pkg/database"
	"github.com/JaimeStill/agent-chat/pkg/logging"
	"github.com/JaimeStill/agent-chat/pkg/middleware"
	"github.com/JaimeStill/agent-chat/pkg/pagination"
	"github.com/JaimeStill/agent-chat/pkg/tracing"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	SSLMode:         "DATABASE_SSL_MODE",
}

var loggingEnv = &logging.Env{
	Level:     "LOGGING_LEVEL",
	Format:    "LOGGING_FORMAT",
	AddSource: "LOGGING_ADD_SOURCE",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CORS_ENABLED",
	Origins:          "CORS_ORIGINS",
	AllowedMethods:   "CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CORS_ALLOWED_HEADERS",
	AllowCredentials: "CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PAGINATION_MAX_PAGE_SIZE",
}

var providersEnv = &providers.Env{
	ConnectTimeout:  "PROVIDERS_CONNECT_TIMEOUT",
	ReadTimeout:     "PROVIDERS_READ_TIMEOUT",
	MaxResponseSize: "PROVIDERS_MAX_RESPONSE_SIZE",
	MaxConcurrency:  "PROVIDERS_MAX_CONCURRENCY",
	RateLimit:       "PROVIDERS_RATE_LIMIT",
	OpenAI: providers.BackendEnv{
		BaseURL:      "OPENAI_BASE_URL",
		APIKey:       "OPENAI_API_KEY",
		DefaultModel: "OPENAI_DEFAULT_MODEL",
	},
	Gemini: providers.BackendEnv{
		BaseURL:      "GEMINI_BASE_URL",
		APIKey:       "GEMINI_API_KEY",
		DefaultModel: "GEMINI_DEFAULT_MODEL",
	},
}

var tracingEnv = &tracing.Env{
	Enabled:     "TRACING_ENABLED",
	Exporter:    "TRACING_EXPORTER",
	ServiceName: "TRACING_SERVICE_NAME",
}

var tokensEnv = &tokens.Env{
	Counter:  "TOKENS_COUNTER",
	Encoding: "TOKENS_ENCODING",
}
