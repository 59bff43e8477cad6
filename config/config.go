package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const configPathEnv = "CAMPUS_NEWS_CONFIG"

// Duration accepts Go duration strings ("30s", "12h") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds notifier and scheduler settings. Values come from an optional
// YAML file; environment variables override the transport credentials.
type Config struct {
	SMTP      SMTPConfig      `yaml:"smtp"`
	Push      PushConfig      `yaml:"push"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// SMTPConfig wires the outbound mail transport.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  Duration      `yaml:"timeout"`
}

// PushConfig wires the FCM HTTP endpoint.
type PushConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	ServerKey string        `yaml:"serverKey"`
	Timeout   Duration      `yaml:"timeout"`
}

// NotifierConfig bounds the fan-out worker pool.
type NotifierConfig struct {
	Workers int `yaml:"workers"`
}

// SchedulerConfig defines when the digest jobs run.
type SchedulerConfig struct {
	DailyInterval  Duration `yaml:"dailyInterval"`
	WeeklyInterval Duration `yaml:"weeklyInterval"`
}

// Load reads the YAML file named by CAMPUS_NEWS_CONFIG (if any), applies
// defaults and environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv(configPathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SMTP.Port == "" {
		c.SMTP.Port = "587"
	}
	if c.SMTP.Timeout == 0 {
		c.SMTP.Timeout = Duration(10 * time.Second)
	}
	if c.Push.Endpoint == "" {
		c.Push.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	if c.Push.Timeout == 0 {
		c.Push.Timeout = Duration(10 * time.Second)
	}
	if c.Notifier.Workers <= 0 {
		c.Notifier.Workers = 8
	}
	if c.Scheduler.DailyInterval == 0 {
		c.Scheduler.DailyInterval = Duration(24 * time.Hour)
	}
	if c.Scheduler.WeeklyInterval == 0 {
		c.Scheduler.WeeklyInterval = Duration(7 * 24 * time.Hour)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		c.SMTP.Port = v
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		c.SMTP.From = v
	}
	if v := os.Getenv("FCM_SERVER_KEY"); v != "" {
		c.Push.ServerKey = v
	}
}
