package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// AllowedOrigins feeds both CORS and the WebSocket origin check.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// AllowImplicitRooms makes the first join create the room; when false
	// rooms must be created through the REST endpoint first.
	AllowImplicitRooms bool `mapstructure:"allow_implicit_rooms" yaml:"allow_implicit_rooms"`
	// MaxParticipants caps each room. Zero means unlimited.
	MaxParticipants int `mapstructure:"max_participants" yaml:"max_participants"`
	// MaxMessageLen truncates overlong messages, in runes.
	MaxMessageLen int `mapstructure:"max_message_len" yaml:"max_message_len"`
	// EmptyRoomTTL reaps pre-created rooms that never see a join.
	EmptyRoomTTL time.Duration `mapstructure:"empty_room_ttl" yaml:"empty_room_ttl"`

	// IdleTimeout bounds the wait for any inbound frame (pings included)
	// before the connection is treated as half-open and dropped.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// MessageRateLimit caps chat messages per connection per minute. Zero
	// disables the limit.
	MessageRateLimit int `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		AllowedOrigins:     []string{"*"},
		AllowImplicitRooms: true,
		MaxParticipants:    64,
		MaxMessageLen:      2000,
		EmptyRoomTTL:       10 * time.Minute,
		IdleTimeout:        75 * time.Second,
		WriteTimeout:       10 * time.Second,
		MessageRateLimit:   120,
	}
}
