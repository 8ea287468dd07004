package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "custodia/internal/shared/config"
	"custodia/internal/shared/constants"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Ledger    sharedConfig.LedgerConfig    `mapstructure:"ledger"`
	Building  sharedConfig.BuildingConfig  `mapstructure:"building"`
	QRCode    sharedConfig.QRCodeConfig    `mapstructure:"qrcode"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`
	SMTP      sharedConfig.SMTPConfig      `mapstructure:"smtp"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("CUSTODIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if env != "" && env != "default" {
		switch env {
		case constants.EnvDebug, constants.EnvTest, constants.EnvRelease:
		default:
			return nil, fmt.Errorf("unknown server mode: %s", env)
		}
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", constants.EnvDebug)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "custodia_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	viper.SetDefault("auth.bcrypt_cost", 12)
	viper.SetDefault("auth.jwt_secret", "change-me-in-production")
	viper.SetDefault("auth.access_exp_hours", 240)
	viper.SetDefault("auth.refresh_exp_days", 30)

	// Ledger defaults
	viper.SetDefault("ledger.base_url", "http://localhost:4000")
	viper.SetDefault("ledger.channel", "residentschannel")
	viper.SetDefault("ledger.chaincode", "residentManagement")
	viper.SetDefault("ledger.resident_org", "Org1")
	viper.SetDefault("ledger.admin_org", "Org2")
	viper.SetDefault("ledger.admin_identity", "admin2")
	viper.SetDefault("ledger.timeout_seconds", 15)
	viper.SetDefault("ledger.max_retries", 1)

	// Building defaults
	viper.SetDefault("building.timezone", "UTC")
	viper.SetDefault("building.residents_per_apartment", 6)
	viper.SetDefault("building.max_visitors_per_resident", 5)

	// QR code defaults
	viper.SetDefault("qrcode.dir", "public/qrcodes")
	viper.SetDefault("qrcode.size", 256)

	// Scheduler defaults
	viper.SetDefault("scheduler.block_expiry_seconds", 30)

	// SMTP defaults (disabled unless configured)
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
}
