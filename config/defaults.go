// =============================================================================
// 📦 Elyx default configuration
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Conversation: DefaultConversationConfig(),
		LLM:          DefaultLLMConfig(),
		Log:          DefaultLogConfig(),
		Telemetry:    DefaultTelemetryConfig(),
		Metrics:      DefaultMetricsConfig(),
		Transcript:   DefaultTranscriptConfig(),
	}
}

// DefaultConversationConfig returns the conversation defaults.
func DefaultConversationConfig() ConversationConfig {
	return ConversationConfig{
		TurnCeiling:          20,
		TurnsPerCycle:        3,
		ContextBudget:        1800,
		SnippetLimit:         300,
		SimulatedExchanges:   3,
		InteractiveExchanges: 0,
		OpeningLine:          "Hi Elyx, do I need to do any tests before starting my health program?",
		FollowUp:             "How did that consultation go? Do you have everything you need, or is there anything else I can help you with?",
		SatisfactionKeywords: []string{
			"thanks", "thank you", "got it", "appreciate", "helpful", "perfect",
			"that's all", "that's everything", "no more questions", "i'm good",
		},
		EndKeywords:  []string{"bye", "goodbye", "see you", "that's all", "nothing else"},
		ExitCommands: []string{"quit", "exit", "bye", "goodbye"},
	}
}

// DefaultLLMConfig returns the model backend defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:       "gemini",
		Model:          "gemini-2.5-pro",
		Timeout:        60 * time.Second,
		MaxTokens:      1024,
		MaxRetries:     3,
		RateLimitRPS:   2,
		RateLimitBurst: 4,
	}
}

// DefaultLogConfig returns the logging defaults. Logs go to stderr so the
// chat on stdout stays readable.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "warn",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the telemetry defaults.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "elyx",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig returns the Prometheus defaults.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Addr:      ":9091",
		Namespace: "elyx",
	}
}

// DefaultTranscriptConfig returns the transcript store defaults.
func DefaultTranscriptConfig() TranscriptConfig {
	return TranscriptConfig{
		Store: "file",
		Dir:   "./data/transcripts",
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "elyx:transcript:",
			TTL:       7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			Host:            "localhost",
			Port:            5432,
			User:            "elyx",
			Name:            "elyx.db",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
		},
	}
}
