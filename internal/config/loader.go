package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/leadflow/internal/db"
	"github.com/rpattn/leadflow/internal/ingestion"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig
	Database db.Config
	Store    StoreConfig
	Import   ImportConfig
	Log      LogConfig

	// File is the config file that was read, empty when only defaults and env were used.
	File string
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// ImportConfig carries overrides for the ingestion defaults and header aliases.
type ImportConfig struct {
	DefaultSource    string
	DefaultSeller    string
	AffirmativeToken string
	RequiredPolicy   string
	Aliases          map[string][]string
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load reads config.yaml from configPath (optional), a .env file (optional) and
// LEADFLOW_* environment variables, in increasing order of precedence.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("LEADFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dbDefaults := db.DefaultConfig()
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.sqlite_path", "leadflow.db")
	v.SetDefault("import.required_policy", string(ingestion.PolicyCompanyOrOrgNumber))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	cfg := Config{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		cfg.File = v.ConfigFileUsed()
	}

	cfg.Server = ServerConfig{
		Addr:           v.GetString("server.addr"),
		AllowedOrigins: splitList(v.GetStringSlice("server.allowed_origins")),
	}
	cfg.Database = db.Config{
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
	}
	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(v.GetString("store.driver")),
		SQLitePath: v.GetString("store.sqlite_path"),
	}
	cfg.Import = ImportConfig{
		DefaultSource:    v.GetString("import.default_source"),
		DefaultSeller:    v.GetString("import.default_seller"),
		AffirmativeToken: v.GetString("import.affirmative_token"),
		RequiredPolicy:   v.GetString("import.required_policy"),
		Aliases:          v.GetStringMapStringSlice("import.aliases"),
	}
	cfg.Log = LogConfig{
		Level:       v.GetString("log.level"),
		Development: v.GetBool("log.development"),
	}

	if cfg.Store.Driver != DriverPostgres && cfg.Store.Driver != DriverSQLite {
		return cfg, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return cfg, nil
}

// IngestionConfig applies the overrides on top of ingestion.DefaultConfig.
func (c ImportConfig) IngestionConfig() (ingestion.Config, error) {
	cfg := ingestion.DefaultConfig()
	if c.DefaultSource != "" {
		cfg.DefaultSource = c.DefaultSource
	}
	if c.DefaultSeller != "" {
		cfg.DefaultSeller = c.DefaultSeller
	}
	if c.AffirmativeToken != "" {
		cfg.AffirmativeToken = c.AffirmativeToken
	}

	policy, err := ingestion.ParseRequiredPolicy(c.RequiredPolicy)
	if err != nil {
		return ingestion.Config{}, err
	}
	cfg = cfg.WithPolicy(policy)

	for key, aliases := range c.Aliases {
		field, err := ingestion.ParseLogicalField(key)
		if err != nil {
			return ingestion.Config{}, fmt.Errorf("import.aliases: %w", err)
		}
		aliases = splitList(aliases)
		if len(aliases) == 0 {
			return ingestion.Config{}, fmt.Errorf("import.aliases.%s: at least one alias is required", key)
		}
		cfg = cfg.WithAliases(field, aliases...)
	}
	return cfg, nil
}

// splitList flattens comma separated entries, which is how lists arrive from env vars.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
