package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	// Config carries all resolved process configuration. It is constructed
	// once at startup and passed by reference into every constructor that
	// needs it; nothing reads the environment after NewConfig returns.
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string
		WorkDir  string

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		ShutdownTimeout time.Duration

		AccessTokenSecret  string
		RefreshTokenSecret string
		AccessTokenTTL     time.Duration
		RefreshTokenTTL    time.Duration
		// RefreshCookieTTL bounds the refreshToken cookie lifetime; it is
		// configured in days and should outlive RefreshTokenTTL.
		RefreshCookieTTL time.Duration
	}

	DatabaseConfig struct {
		URI  string
		Name string
	}
)

func (c *Config) DefaultFrom() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// NewConfig resolves configuration from defaults, an optional
// config/.env.<env> file and environment variables (in increasing
// precedence).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Gurukul")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("accessTokenSecret", "z$f2y#ur=7t)d&5m4(vj!bq+9e_hx0^8")
	conf.SetDefault("refreshTokenSecret", "q(3n&ke!79#s^p2z)8w=ur5+y$vd0_hm")
	conf.SetDefault("accessTokenTTL", 15*time.Minute)
	conf.SetDefault("refreshTokenTTL", 7*24*time.Hour)
	conf.SetDefault("refreshCookieDays", 7)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "gurukul")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	cfg := &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: conf.GetBool("testMode"),
		Env:      env,
		Build:    conf.GetString("build"),
		AppName:  conf.GetString("appName"),
		WorkDir:  Getwd(),

		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Addr:            conf.GetString("serverAddr"),
			DebugAddr:       conf.GetString("serverDebugAddr"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),

			AccessTokenSecret:  conf.GetString("accessTokenSecret"),
			RefreshTokenSecret: conf.GetString("refreshTokenSecret"),
			AccessTokenTTL:     conf.GetDuration("accessTokenTTL"),
			RefreshTokenTTL:    conf.GetDuration("refreshTokenTTL"),
			RefreshCookieTTL:   time.Duration(conf.GetInt("refreshCookieDays")) * 24 * time.Hour,
		},

		Database: DatabaseConfig{
			URI:  conf.GetString("databaseURI"),
			Name: conf.GetString("databaseName"),
		},
	}

	// the baked-in secrets are for local development only
	if !cfg.Debug {
		err := vala.BeginValidation().Validate(
			vala.StringNotEmpty(cfg.Server.AccessTokenSecret, "accessTokenSecret"),
			vala.StringNotEmpty(cfg.Server.RefreshTokenSecret, "refreshTokenSecret"),
			vala.StringNotEmpty(cfg.Database.URI, "databaseURI"),
		).Check()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if cfg.Server.AccessTokenSecret == cfg.Server.RefreshTokenSecret {
			log.Fatal("config: accessTokenSecret and refreshTokenSecret must differ")
		}
	}
	return cfg
}
