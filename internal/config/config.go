package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "MARKETDIGEST_CONFIG"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	emailUserEnv     = "EMAIL_USER"
	emailPassEnv     = "EMAIL_PASS"
	emailToEnv       = "EMAIL_TO"
	smtpHostEnv      = "SMTP_HOST"
	artifactsDirEnv  = "MARKETDIGEST_ARTIFACTS"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:138.0) Gecko/20100101 Firefox/138.0"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig    `yaml:"logging"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Gemini    GeminiConfig     `yaml:"gemini"`
	Email     EmailConfig      `yaml:"email"`
	Artifacts ArtifactConfig   `yaml:"artifacts"`
	Workflows []WorkflowConfig `yaml:"workflows"`
}

// LoggingConfig selects the slog level for the whole process.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig resolves cron expressions against one timezone.
type SchedulerConfig struct {
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// GeminiConfig defines how to contact the Gemini generateContent API.
type GeminiConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"apiKey"`
	MaxRetries int           `yaml:"maxRetries"`
	RetryDelay time.Duration `yaml:"retryDelay"`
}

// EmailConfig wires the SMTP account used for digest delivery.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	SSL      bool   `yaml:"ssl"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// ArtifactConfig enables optional per-run file output (screenshots, digests).
type ArtifactConfig struct {
	Dir string `yaml:"dir"`
}

// WorkflowConfig describes one scheduled digest job family.
type WorkflowConfig struct {
	Name      string            `yaml:"name"`
	Collector string            `yaml:"collector"`
	Schedule  string            `yaml:"schedule"`
	Subject   string            `yaml:"subject"`
	Prompt    string            `yaml:"prompt"`
	Sources   []SourceConfig    `yaml:"sources"`
	Options   map[string]string `yaml:"options"`
}

// SourceConfig holds one concrete input: a keyword, URL, or account handle.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Workflows) == 0 {
		cfg.Workflows = defaultConfig().Workflows
	}

	return cfg
}

// Workflow returns the workflow with the given name, if configured.
func (c Config) Workflow(name string) (WorkflowConfig, bool) {
	for _, wf := range c.Workflows {
		if wf.Name == name {
			return wf, true
		}
	}
	return WorkflowConfig{}, false
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(emailUserEnv); v != "" {
		c.Email.Username = v
		if c.Email.From == "" {
			c.Email.From = v
		}
	}

	if v := os.Getenv(emailPassEnv); v != "" {
		c.Email.Password = v
	}

	if v := os.Getenv(emailToEnv); v != "" {
		c.Email.To = v
	}

	if v := os.Getenv(smtpHostEnv); v != "" {
		c.Email.Host = v
	}

	if v := os.Getenv(artifactsDirEnv); v != "" {
		c.Artifacts.Dir = v
	}

	// Recipient defaults to the sending account, matching the original jobs.
	if c.Email.To == "" {
		c.Email.To = c.Email.Username
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.MaxRetries != 0 {
		base.Gemini.MaxRetries = override.Gemini.MaxRetries
	}
	if override.Gemini.RetryDelay != 0 {
		base.Gemini.RetryDelay = override.Gemini.RetryDelay
	}

	if override.Email.Host != "" {
		base.Email.Host = override.Email.Host
	}
	if override.Email.Port != 0 {
		base.Email.Port = override.Email.Port
	}
	if override.Email.Port != 0 || override.Email.Host != "" {
		base.Email.SSL = override.Email.SSL
	}
	if override.Email.Username != "" {
		base.Email.Username = override.Email.Username
	}
	if override.Email.Password != "" {
		base.Email.Password = override.Email.Password
	}
	if override.Email.From != "" {
		base.Email.From = override.Email.From
	}
	if override.Email.To != "" {
		base.Email.To = override.Email.To
	}

	if override.Artifacts.Dir != "" {
		base.Artifacts.Dir = override.Artifacts.Dir
	}

	if len(override.Workflows) > 0 {
		base.Workflows = override.Workflows
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Gemini: GeminiConfig{
			Endpoint:   "https://generativelanguage.googleapis.com/v1beta",
			Model:      "gemini-1.5-flash",
			APIKey:     "",
			MaxRetries: 3,
			RetryDelay: 5 * time.Second,
		},
		Email: EmailConfig{
			Host: "smtp.gmail.com",
			Port: 465,
			SSL:  true,
		},
		Workflows: []WorkflowConfig{
			{
				Name:      "google-news",
				Collector: "google-news",
				Schedule:  "30 2 * * *",
				Subject:   "Indian Stock News Analysis",
				Prompt:    defaultNewsPrompt,
				Sources: []SourceConfig{
					{Name: "nifty 50"},
					{Name: "sensex"},
				},
				Options: map[string]string{
					"limit":    "25",
					"language": "en-IN",
					"country":  "IN",
				},
			},
			{
				Name:      "market-pulse",
				Collector: "page",
				Schedule:  "0 3 * * *",
				Subject:   "Pulse News Summary",
				Prompt:    defaultPulsePrompt,
				Sources: []SourceConfig{
					{Name: "pulse", URL: "https://pulse.zerodha.com/"},
				},
				Options: map[string]string{
					"userAgent": defaultUserAgent,
				},
			},
			{
				Name:      "daily-digest",
				Collector: "digest-api",
				Schedule:  "0 4 * * *",
				Subject:   "Groww Daily Digest",
				Prompt:    defaultDigestPrompt,
				Sources: []SourceConfig{
					{Name: "groww-cms", URL: "https://cmsapi.groww.in/api/v1/dailydigests?_limit=1&_start=0"},
				},
				Options: map[string]string{
					"userAgent": defaultUserAgent,
					"origin":    "https://groww.in",
				},
			},
			{
				Name:      "screenshots",
				Collector: "screenshots",
				Schedule:  "0 5 * * *",
				Subject:   "Social Media Post Analysis",
				Sources: []SourceConfig{
					{Name: "NSEIndia"},
					{Name: "moneycontrolcom"},
				},
			},
		},
	}
}
