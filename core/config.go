package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	Build    string
	AppName  string
	WorkDir  string

	RollbarToken string

	API struct {
		BaseURL string
		Token   string
		Timeout time.Duration
	}

	Messaging struct {
		PageSize     int
		PollInterval time.Duration
	}
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Ujumbe")
	conf.SetDefault("apiBaseURL", "http://localhost:8000")
	conf.SetDefault("apiToken", "")
	conf.SetDefault("apiTimeout", 15*time.Second)
	conf.SetDefault("messagingPageSize", 50)
	conf.SetDefault("messagingPollInterval", 90*time.Second)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	cfg := &Config{
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		Env:          env,
		Build:        conf.GetString("build"),
		AppName:      conf.GetString("appName"),
		WorkDir:      wd,
		RollbarToken: conf.GetString("rollbarToken"),
	}
	cfg.API.BaseURL = conf.GetString("apiBaseURL")
	cfg.API.Token = conf.GetString("apiToken")
	cfg.API.Timeout = conf.GetDuration("apiTimeout")
	cfg.Messaging.PageSize = conf.GetInt("messagingPageSize")
	cfg.Messaging.PollInterval = conf.GetDuration("messagingPollInterval")
	return cfg
}
