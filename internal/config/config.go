package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr    string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SessionSecret string
	GinMode       string

	// SMTP settings. When SenderEmail or SenderPassword is empty the
	// notification sender runs in simulated mode and only logs messages.
	SMTPHost       string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string

	// AdminPassword seeds the admin credential on first startup.
	AdminPassword string
}

// Load reads configuration from KPI_-prefixed environment variables with
// sensible development defaults.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("KPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "kpiuser")
	v.SetDefault("db_password", "kpipassword")
	v.SetDefault("db_name", "kpi_workflow")
	v.SetDefault("session_secret", "default-secret-key-change-me")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("sender_email", "")
	v.SetDefault("sender_password", "")
	v.SetDefault("admin_password", "admin888")

	return &Config{
		ListenAddr:     v.GetString("listen_addr"),
		DBDriver:       v.GetString("db_driver"),
		DBHost:         v.GetString("db_host"),
		DBPort:         v.GetString("db_port"),
		DBUser:         v.GetString("db_user"),
		DBPassword:     v.GetString("db_password"),
		DBName:         v.GetString("db_name"),
		SessionSecret:  v.GetString("session_secret"),
		GinMode:        v.GetString("gin_mode"),
		SMTPHost:       v.GetString("smtp_host"),
		SMTPPort:       v.GetInt("smtp_port"),
		SenderEmail:    v.GetString("sender_email"),
		SenderPassword: v.GetString("sender_password"),
		AdminPassword:  v.GetString("admin_password"),
	}
}
