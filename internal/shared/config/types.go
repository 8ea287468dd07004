// Package config defines the typed configuration sections shared across
// the application.
package config

import "fmt"

// ServerConfig captures HTTP server settings.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GetAddr returns the listen address in host:port form.
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig captures MySQL connection settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig captures logging settings.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// AuthConfig captures password hashing and token settings.
type AuthConfig struct {
	BcryptCost      int    `mapstructure:"bcrypt_cost"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	AccessExpHours  int    `mapstructure:"access_exp_hours"`
	RefreshExpDays  int    `mapstructure:"refresh_exp_days"`
}

// LedgerConfig captures the external ledger invocation API settings.
// Identities name the per-org enrollment used for gateway calls that are not
// made on behalf of a specific resident.
type LedgerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Channel        string `mapstructure:"channel"`
	Chaincode      string `mapstructure:"chaincode"`
	ResidentOrg    string `mapstructure:"resident_org"`
	AdminOrg       string `mapstructure:"admin_org"`
	AdminIdentity  string `mapstructure:"admin_identity"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
}

// BuildingConfig captures occupancy quotas. The building record is
// configuration, not operational state.
type BuildingConfig struct {
	Timezone               string `mapstructure:"timezone"`
	ResidentsPerApartment  int    `mapstructure:"residents_per_apartment"`
	MaxVisitorsPerResident int    `mapstructure:"max_visitors_per_resident"`
}

// QRCodeConfig captures where QR image artifacts are written.
type QRCodeConfig struct {
	Dir  string `mapstructure:"dir"`
	Size int    `mapstructure:"size"`
}

// SchedulerConfig captures periodic job cadences.
type SchedulerConfig struct {
	BlockExpirySeconds int `mapstructure:"block_expiry_seconds"`
}

// SMTPConfig captures outbound mail settings. Empty host disables mail.
type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}
