package config

type LogConfig struct {
	Dir    string `mapstructure:"dir"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

type TrackerConfig struct {
	// RequestTimeout is the first attempt's timeout window in seconds.
	// It doubles on every retry.
	RequestTimeout int `mapstructure:"request_timeout" validate:"required,min=1"`
	// MaxRetries is the attempt ceiling, counted in attempts.
	MaxRetries int `mapstructure:"max_retries" validate:"required,min=1"`
	// MinInterval is the floor for the periodic announce interval in
	// seconds, whatever the tracker answers.
	MinInterval int `mapstructure:"min_interval" validate:"required,min=1"`
	// MaxResponseLength rejects tracker responses declaring a larger
	// Content-Length. Zero disables the check.
	MaxResponseLength int64  `mapstructure:"max_response_length" validate:"min=0"`
	UserAgent         string `mapstructure:"user_agent"`
	TLSSkipVerify     bool   `mapstructure:"tls_skip_verify"`
}

type Config struct {
	Port         int    `mapstructure:"port" validate:"required,min=1024,max=65535"`
	NumWant      int    `mapstructure:"numwant" validate:"required,min=1,max=200"`
	PeerIDPrefix string `mapstructure:"peer_id_prefix"`

	Log     LogConfig     `mapstructure:"log"`
	Tracker TrackerConfig `mapstructure:"tracker"`
}
