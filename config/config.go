package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Workdir  string `yaml:"workdir"`
	Location string `yaml:"location"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig holds the HTTP listener settings.
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DBConfig holds the relational database settings.
type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
}

// BlobConfig holds the external blob store settings.
type BlobConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// SmtpConfig holds the optional contact-message notification settings.
type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Passwd   string `yaml:"passwd"`
	NotifyTo string `yaml:"notify_to"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Blob     BlobConfig `yaml:"blob"`
	Smtp     SmtpConfig `yaml:"smtp"`
	Logger   LogConfig  `yaml:"logger"`
}

// DSN builds a postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Passwd, c.Name)
}

// DefaultAppConfig returns the built-in defaults used when no config file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "storefront",
			Workdir:  "/var/storefront",
			Location: "UTC",
			Debug:    false,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 1980,
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "storefront",
			User:     "postgres",
			Passwd:   "",
			MaxConn:  100,
			IdleConn: 10,
		},
		Blob: BlobConfig{
			Endpoint: "https://blob.vercel-storage.com",
			Token:    "",
		},
		Smtp: SmtpConfig{
			Enabled: false,
			Port:    587,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/storefront/storefront.log",
		},
	}
}

// LoadConfig reads the yaml config file if it exists, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
			}
		}
	}

	setEnvString("STOREFRONT_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBool("STOREFRONT_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvString("STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setEnvInt("STOREFRONT_WEB_PORT", &cfg.Web.Port)
	setEnvString("STOREFRONT_DB_TYPE", &cfg.Database.Type)
	setEnvString("STOREFRONT_DB_HOST", &cfg.Database.Host)
	setEnvInt("STOREFRONT_DB_PORT", &cfg.Database.Port)
	setEnvString("STOREFRONT_DB_NAME", &cfg.Database.Name)
	setEnvString("STOREFRONT_DB_USER", &cfg.Database.User)
	setEnvString("STOREFRONT_DB_PWD", &cfg.Database.Passwd)
	setEnvString("STOREFRONT_BLOB_ENDPOINT", &cfg.Blob.Endpoint)
	setEnvString("BLOB_READ_WRITE_TOKEN", &cfg.Blob.Token)
	setEnvBool("STOREFRONT_SMTP_ENABLED", &cfg.Smtp.Enabled)
	setEnvString("STOREFRONT_SMTP_HOST", &cfg.Smtp.Host)
	setEnvInt("STOREFRONT_SMTP_PORT", &cfg.Smtp.Port)
	setEnvString("STOREFRONT_SMTP_SENDER", &cfg.Smtp.Sender)
	setEnvString("STOREFRONT_SMTP_PWD", &cfg.Smtp.Passwd)
	setEnvString("STOREFRONT_SMTP_NOTIFY_TO", &cfg.Smtp.NotifyTo)
	setEnvString("STOREFRONT_LOGGER_MODE", &cfg.Logger.Mode)
	return cfg
}

func setEnvString(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*val = i
		}
	}
}

func setEnvBool(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*val = b
		}
	}
}
