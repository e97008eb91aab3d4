package simulation

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-arena/internal/types"
	"github.com/rxtech-lab/argo-arena/pkg/errors"
)

// Defaults applied to chat limits left unset in the config file.
const (
	defaultMaxMessageLength    = 280
	defaultMaxMessagesPerUser  = 2
	defaultMaxMessagesPerAgent = 3
	defaultTickInterval        = 30 * time.Second
)

// AgentSeed describes one agent created at a simulation's first touch.
type AgentSeed struct {
	ID   string  `yaml:"id" validate:"required"`
	Name string  `yaml:"name" validate:"required"`
	Cash float64 `yaml:"cash" validate:"gte=0"`
}

// Definition configures one simulation type. Each definition gets its own
// fully isolated instance store.
type Definition struct {
	ID      string               `yaml:"id" validate:"required"`
	Mode    types.SimulationMode `yaml:"mode" validate:"required,oneof=simulated real-time historical"`
	Tickers []string             `yaml:"tickers" validate:"required,min=1"`
	// TickInterval is the round-advance cadence, e.g. "30s" or "2m".
	TickInterval string           `yaml:"tick_interval"`
	ChatEnabled  bool             `yaml:"chat_enabled"`
	Chat         types.ChatConfig `yaml:"chat"`
	Agents       []AgentSeed      `yaml:"agents" validate:"required,min=1,dive"`
	// HistoricalStartDate anchors the replayed week for historical mode,
	// formatted 2006-01-02. Empty means today.
	HistoricalStartDate string `yaml:"historical_start_date"`
}

// TickDuration parses the definition's tick interval.
func (d Definition) TickDuration() (time.Duration, error) {
	if d.TickInterval == "" {
		return defaultTickInterval, nil
	}

	interval, err := time.ParseDuration(d.TickInterval)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "bad tick_interval %q for simulation %s", d.TickInterval, d.ID)
	}

	return interval, nil
}

// ChatConfig returns the definition's chat limits with the enabled flag
// resolved from chat_enabled.
func (d Definition) ChatConfig() types.ChatConfig {
	cfg := d.Chat
	cfg.Enabled = d.ChatEnabled

	return cfg
}

// Config is the full multi-simulation configuration.
type Config struct {
	Simulations []Definition `yaml:"simulations" validate:"required,min=1,dive"`

	// Provider credentials and mode overrides come from the environment,
	// not the config file.
	PolygonAPIKey    string    `yaml:"-"`
	HistoricalAnchor time.Time `yaml:"-"`
}

// LoadConfig reads, parses and validates the configuration file, then applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates raw configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	for _, def := range cfg.Simulations {
		if _, err := def.TickDuration(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	for i := range cfg.Simulations {
		chat := &cfg.Simulations[i].Chat
		if chat.MaxMessageLength == 0 {
			chat.MaxMessageLength = defaultMaxMessageLength
		}

		if chat.MaxMessagesPerUser == 0 {
			chat.MaxMessagesPerUser = defaultMaxMessagesPerUser
		}

		if chat.MaxMessagesPerAgent == 0 {
			chat.MaxMessagesPerAgent = defaultMaxMessagesPerAgent
		}
	}
}

// applyEnvOverrides applies the recognized environment options. Historical
// mode takes precedence over real-time when both are set.
func applyEnvOverrides(cfg *Config) {
	cfg.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")

	if anchor := os.Getenv("HISTORICAL_SIMULATION_START_DATE"); anchor != "" {
		if parsed, err := time.Parse("2006-01-02", anchor); err == nil {
			cfg.HistoricalAnchor = parsed
		}
	}

	mode := types.SimulationMode("")
	if envBool("USE_REAL_DATA") {
		mode = types.ModeRealTime
	}

	if envBool("USE_HISTORICAL_SIMULATION") {
		mode = types.ModeHistorical
	}

	if mode == "" {
		return
	}

	for i := range cfg.Simulations {
		cfg.Simulations[i].Mode = mode
	}
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))

	return err == nil && value
}
