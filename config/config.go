package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DEFAULT_PORT = 64

type Config struct {
	Port             int           `yaml:"port"`
	ListenHost       string        `yaml:"listen_host"`
	PeerHost         string        `yaml:"peer_host"`
	PeerPortBase     int           `yaml:"peer_port_base"`
	StartupTimeout   time.Duration `yaml:"startup_timeout"`
	SettleDelay      time.Duration `yaml:"settle_delay"`
	Policy           string        `yaml:"policy"`
	TravelTime       time.Duration `yaml:"travel_time"`
	DoorOpenDuration time.Duration `yaml:"door_open_duration"`
	DirectionPenalty time.Duration `yaml:"direction_penalty"`
	LogLevel         string        `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Port:             DEFAULT_PORT,
		ListenHost:       "",
		PeerHost:         "localhost",
		PeerPortBase:     0,
		StartupTimeout:   0,
		SettleDelay:      3 * time.Second,
		Policy:           "first",
		TravelTime:       2 * time.Second,
		DoorOpenDuration: 3 * time.Second,
		DirectionPenalty: 4 * time.Second,
		LogLevel:         "info",
	}
}

/*
 * Defaults, then the yaml file, then the env file. Either path may be
 * empty, and a missing file is not an error.
 */
func Load(path string, envPath string) (Config, error) {
	c := Default()

	if path != "" {
		file, err := os.Open(path)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("open config: %w", err)
		}

		if err == nil {
			defer file.Close()

			err = yaml.NewDecoder(file).Decode(&c)
			if err != nil && !errors.Is(err, io.EOF) {
				return c, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	if envPath != "" {
		envFile, err := godotenv.Read(envPath)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("read env file: %w", err)
		}

		if err == nil {
			if err := c.applyEnv(envFile); err != nil {
				return c, err
			}
		}
	}

	return c, c.Validate()
}

func (c *Config) applyEnv(env map[string]string) error {
	ints := map[string]*int{
		"SCHEDULER_PORT":           &c.Port,
		"SCHEDULER_PEER_PORT_BASE": &c.PeerPortBase,
	}
	strs := map[string]*string{
		"SCHEDULER_LISTEN_HOST": &c.ListenHost,
		"SCHEDULER_PEER_HOST":   &c.PeerHost,
		"SCHEDULER_POLICY":      &c.Policy,
		"SCHEDULER_LOG_LEVEL":   &c.LogLevel,
	}
	durations := map[string]*time.Duration{
		"SCHEDULER_STARTUP_TIMEOUT":    &c.StartupTimeout,
		"SCHEDULER_SETTLE_DELAY":       &c.SettleDelay,
		"SCHEDULER_TRAVEL_TIME":        &c.TravelTime,
		"SCHEDULER_DOOR_OPEN_DURATION": &c.DoorOpenDuration,
		"SCHEDULER_DIRECTION_PENALTY":  &c.DirectionPenalty,
	}

	for key, target := range ints {
		if value, ok := env[key]; ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = parsed
		}
	}

	for key, target := range strs {
		if value, ok := env[key]; ok {
			*target = value
		}
	}

	for key, target := range durations {
		if value, ok := env[key]; ok {
			parsed, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = parsed
		}
	}

	return nil
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.PeerPortBase < 0 || c.PeerPortBase+255 > 65535 {
		return fmt.Errorf("peer port base %d out of range", c.PeerPortBase)
	}
	if c.PeerHost == "" {
		return errors.New("peer host must be set")
	}
	if c.StartupTimeout < 0 || c.SettleDelay < 0 {
		return errors.New("startup timeout and settle delay must not be negative")
	}
	if c.TravelTime < 0 || c.DoorOpenDuration < 0 || c.DirectionPenalty < 0 {
		return errors.New("cost durations must not be negative")
	}

	return nil
}
