package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Env        string   `yaml:"env"`
	SiteOrigin string   `yaml:"site_origin"`
	ListenAddr string   `yaml:"listen_addr"`
	Timezone   string   `yaml:"timezone"`
	Languages  []string `yaml:"languages"`
	LogLevel   string   `yaml:"log_level"`
	LogJSON    bool     `yaml:"log_json"`

	Security  Security  `yaml:"security"`
	Store     Store     `yaml:"store"`
	Content   Content   `yaml:"content"`
	Calendar  Calendar  `yaml:"calendar"`
	Prayer    Prayer    `yaml:"prayer"`
	Comments  Comments  `yaml:"comments"`
	Reminders Reminders `yaml:"reminders"`
	Contact   Contact   `yaml:"contact"`
	Bible     Bible     `yaml:"bible"`
}

type Security struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	// StrictOrigin rejects mutating requests that carry neither an Origin
	// header nor a same-origin Sec-Fetch-Site signal.
	StrictOrigin bool                 `yaml:"strict_origin"`
	RateLimiter  string               `yaml:"rate_limiter"` // memory | redis
	RateLimits   map[string]RateLimit `yaml:"rate_limits"`
}

type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

type Store struct {
	Driver  string `yaml:"driver"` // fs | sqlite | postgres
	DataDir string `yaml:"data_dir"`
}

type Content struct {
	Dir string `yaml:"dir"`
}

type Calendar struct {
	Name            string        `yaml:"name"`
	ProdID          string        `yaml:"prod_id"`
	DefaultDuration time.Duration `yaml:"default_duration"`
	UpcomingLimit   int           `yaml:"upcoming_limit"`
}

type Prayer struct {
	// RequireApproval holds new posts back until a moderator approves them.
	RequireApproval bool `yaml:"require_approval"`
	PageSize        int  `yaml:"page_size"`
}

type Comments struct {
	AutoApprove bool `yaml:"auto_approve"`
}

type Reminders struct {
	LeadTime time.Duration `yaml:"lead_time"`
	Cron     string        `yaml:"cron"` // empty disables the in-process schedule
}

type Contact struct {
	Recipient string `yaml:"recipient"`
}

type Bible struct {
	BaseURL            string        `yaml:"base_url"`
	DefaultTranslation string        `yaml:"default_translation"`
	Timeout            time.Duration `yaml:"timeout"`
}

type Private struct {
	AdminSecret     string   `yaml:"admin_secret"`
	RemindersSecret string   `yaml:"reminders_secret"`
	TokenKey        string   `yaml:"token_key"`
	Email           Email    `yaml:"email"`
	Redis           Redis    `yaml:"redis"`
	Database        Database `yaml:"database"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
}

type Redis struct {
	URL string `yaml:"url"`
}

type Database struct {
	URL string `yaml:"url"`
}

func (c *Config) IsProduction() bool {
	return c.Public.Env == EnvProduction
}

// Location returns the venue time zone. Unknown zone names fall back to a
// fixed IST offset so recurrence math keeps working without tzdata.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Public.Timezone)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// RateLimit returns the configured limit for an endpoint, or the default.
func (c *Config) RateLimit(endpoint string) RateLimit {
	if rl, ok := c.Public.Security.RateLimits[endpoint]; ok && rl.Max > 0 && rl.Window > 0 {
		return rl
	}
	if rl, ok := defaultRateLimits[endpoint]; ok {
		return rl
	}
	return RateLimit{Max: 10, Window: 10 * time.Minute}
}

var defaultRateLimits = map[string]RateLimit{
	"contact":     {Max: 5, Window: 10 * time.Minute},
	"newsletter":  {Max: 5, Window: 10 * time.Minute},
	"unsubscribe": {Max: 10, Window: 10 * time.Minute},
	"prayer":      {Max: 5, Window: 10 * time.Minute},
	"pray":        {Max: 3, Window: time.Hour},
	"comment":     {Max: 5, Window: 10 * time.Minute},
	"rsvp":        {Max: 10, Window: 10 * time.Minute},
	"rsvp_cancel": {Max: 10, Window: 10 * time.Minute},
	"admin":       {Max: 60, Window: time.Minute},
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// MustLoad reads public.yaml (required) and private.yaml (optional) from
// configFolder, overlays environment variables and panics on an incomplete
// result. A .env file in the folder or the working directory is loaded first;
// variables already set in the process environment win.
func MustLoad(configFolder string) *Config {
	_ = godotenv.Load(path.Join(configFolder, ".env"))
	_ = godotenv.Load()

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	if _, err := os.Stat(path.Join(configFolder, "private.yaml")); err == nil {
		mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	}

	cfg := &Config{Public: public, Private: private}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	setString(&c.Public.Env, "APP_ENV")
	setString(&c.Public.SiteOrigin, "SITE_ORIGIN")
	setString(&c.Public.ListenAddr, "LISTEN_ADDR")
	setString(&c.Private.AdminSecret, "ADMIN_SECRET")
	setString(&c.Private.RemindersSecret, "REMINDERS_SECRET")
	setString(&c.Private.TokenKey, "TOKEN_KEY")
	setString(&c.Private.Email.Password, "SMTP_PASSWORD")
	setString(&c.Private.Redis.URL, "REDIS_URL")
	setString(&c.Private.Database.URL, "DATABASE_URL")
	if v := os.Getenv("STRICT_ORIGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Public.Security.StrictOrigin = b
		}
	}
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Public.Env == "" {
		c.Public.Env = EnvDevelopment
	}
	if c.Public.ListenAddr == "" {
		c.Public.ListenAddr = ":8080"
	}
	if c.Public.Timezone == "" {
		c.Public.Timezone = "Asia/Kolkata"
	}
	if len(c.Public.Languages) == 0 {
		c.Public.Languages = []string{"en", "ta"}
	}
	if c.Public.Security.RateLimiter == "" {
		c.Public.Security.RateLimiter = "memory"
	}
	if c.Public.Store.Driver == "" {
		c.Public.Store.Driver = "fs"
	}
	if c.Public.Store.DataDir == "" {
		c.Public.Store.DataDir = "data"
	}
	if c.Public.Content.Dir == "" {
		c.Public.Content.Dir = "content"
	}
	if c.Public.Calendar.ProdID == "" {
		c.Public.Calendar.ProdID = "-//PT Church//Site Calendar//EN"
	}
	if c.Public.Calendar.DefaultDuration <= 0 {
		c.Public.Calendar.DefaultDuration = 60 * time.Minute
	}
	if c.Public.Calendar.UpcomingLimit <= 0 {
		c.Public.Calendar.UpcomingLimit = 50
	}
	if c.Public.Prayer.PageSize <= 0 {
		c.Public.Prayer.PageSize = 50
	}
	if c.Public.Reminders.LeadTime <= 0 {
		c.Public.Reminders.LeadTime = 24 * time.Hour
	}
	if c.Public.Bible.Timeout <= 0 {
		c.Public.Bible.Timeout = 10 * time.Second
	}
	if c.Public.Bible.DefaultTranslation == "" {
		c.Public.Bible.DefaultTranslation = "kjv"
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.Public.SiteOrigin == "" {
		missing = append(missing, "site_origin")
	}
	if c.Private.TokenKey == "" {
		missing = append(missing, "token_key")
	}
	switch c.Public.Store.Driver {
	case "fs", "sqlite":
	case "postgres":
		if c.Private.Database.URL == "" {
			missing = append(missing, "database.url")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Public.Store.Driver)
	}
	if c.Public.Security.RateLimiter == "redis" && c.Private.Redis.URL == "" {
		missing = append(missing, "redis.url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
