package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPPort         = "8080"
	defaultListenerTrigger  = "$Hi"
	defaultListenerReply    = "Hello!"
	defaultRelayBaseURL     = "http://localhost:8080"
	defaultTemporalAddress  = "localhost:7233"
	defaultTemporalNS       = "default"
	defaultTaskQueue        = "review-gate-task-queue"
	defaultReviewTimeoutSec = 3600
)

type Config struct {
	HTTPPort         string
	SigningSecret    string
	BotToken         string
	DefaultChannelID string
	SlackAPIURL      string
	VerifySignatures bool
	ListenerTrigger  string
	ListenerReply    string
}

type ClientConfig struct {
	RelayBaseURL          string
	TemporalAddress       string
	TemporalNamespace     string
	TemporalTaskQueue     string
	ReviewTimeoutSec      int
	ReviewNotifyChannelID string
}

// Environment variables take precedence over the file.
type fileConfig struct {
	HTTPPort         string `yaml:"http_port"`
	SlackAPIURL      string `yaml:"slack_api_url"`
	DefaultChannelID string `yaml:"default_channel_id"`
	VerifySignatures *bool  `yaml:"verify_signatures"`
	Listener         struct {
		Trigger string `yaml:"trigger"`
		Reply   string `yaml:"reply"`
	} `yaml:"listener"`
	Client struct {
		RelayBaseURL          string `yaml:"relay_base_url"`
		TemporalAddress       string `yaml:"temporal_address"`
		TemporalNamespace     string `yaml:"temporal_namespace"`
		TemporalTaskQueue     string `yaml:"temporal_task_queue"`
		ReviewTimeoutSec      int    `yaml:"review_timeout_sec"`
		ReviewNotifyChannelID string `yaml:"review_notify_channel_id"`
	} `yaml:"client"`
}

func Load() (Config, error) {
	fc, err := loadFile()
	if err != nil {
		return Config{}, err
	}

	verify := true
	if fc.VerifySignatures != nil {
		verify = *fc.VerifySignatures
	}

	cfg := Config{
		HTTPPort:         getenv("HTTP_PORT", firstNonEmpty(fc.HTTPPort, defaultHTTPPort)),
		SigningSecret:    os.Getenv("SIGNING_SECRET"),
		BotToken:         os.Getenv("SLACK_TOKEN"),
		DefaultChannelID: getenv("SLACK_CHANNEL_ID", fc.DefaultChannelID),
		SlackAPIURL:      getenv("SLACK_API_URL", fc.SlackAPIURL),
		VerifySignatures: getenvBool("SLACK_VERIFY_SIGNATURES", verify),
		ListenerTrigger:  getenv("LISTENER_TRIGGER", firstNonEmpty(fc.Listener.Trigger, defaultListenerTrigger)),
		ListenerReply:    getenv("LISTENER_REPLY", firstNonEmpty(fc.Listener.Reply, defaultListenerReply)),
	}

	if cfg.SigningSecret == "" {
		return Config{}, fmt.Errorf("SIGNING_SECRET is required")
	}
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("SLACK_TOKEN is required")
	}
	if cfg.DefaultChannelID == "" {
		return Config{}, fmt.Errorf("SLACK_CHANNEL_ID is required")
	}

	return cfg, nil
}

func LoadClient() (ClientConfig, error) {
	fc, err := loadFile()
	if err != nil {
		return ClientConfig{}, err
	}

	timeout := defaultReviewTimeoutSec
	if fc.Client.ReviewTimeoutSec > 0 {
		timeout = fc.Client.ReviewTimeoutSec
	}

	return ClientConfig{
		RelayBaseURL:          getenv("RELAY_BASE_URL", firstNonEmpty(fc.Client.RelayBaseURL, defaultRelayBaseURL)),
		TemporalAddress:       getenv("TEMPORAL_ADDRESS", firstNonEmpty(fc.Client.TemporalAddress, defaultTemporalAddress)),
		TemporalNamespace:     getenv("TEMPORAL_NAMESPACE", firstNonEmpty(fc.Client.TemporalNamespace, defaultTemporalNS)),
		TemporalTaskQueue:     getenv("TEMPORAL_TASK_QUEUE", firstNonEmpty(fc.Client.TemporalTaskQueue, defaultTaskQueue)),
		ReviewTimeoutSec:      getenvInt("REVIEW_TIMEOUT_SEC", timeout),
		ReviewNotifyChannelID: getenv("REVIEW_NOTIFY_CHANNEL_ID", fc.Client.ReviewNotifyChannelID),
	}, nil
}

func loadFile() (fileConfig, error) {
	var fc fileConfig
	path := os.Getenv("RELAY_CONFIG_FILE")
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func getenv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
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

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
