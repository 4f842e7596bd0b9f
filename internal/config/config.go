package config

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/procure-indent/internal/domain/role"
	"github.com/garyjia/procure-indent/internal/domain/workflow"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StageConfig is one configured rung of the approval ladder. A threshold
// of zero or below means unbounded.
type StageConfig struct {
	Role      string  `mapstructure:"role"`
	Threshold float64 `mapstructure:"threshold"`
	Order     int     `mapstructure:"order"`
}

// WorkflowConfig holds the approval ladder and SLA windows
type WorkflowConfig struct {
	Stages        []StageConfig  `mapstructure:"stages"`
	SLAHours      map[string]int `mapstructure:"sla_hours"`
	MonitorPeriod time.Duration  `mapstructure:"monitor_period"`
}

// DocumentsConfig holds purchase-order form generation configuration
type DocumentsConfig struct {
	OutputDir   string `mapstructure:"output_dir"`
	CompanyName string `mapstructure:"company_name"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/procurement.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Workflow defaults
	viper.SetDefault("workflow.monitor_period", 5*time.Minute)

	// Documents defaults
	viper.SetDefault("documents.output_dir", "generated_pos")
	viper.SetDefault("documents.company_name", "Procurement Dept")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := c.StageTable(); err != nil {
		return fmt.Errorf("workflow.stages: %w", err)
	}
	return nil
}

// StageTable builds the approval ladder from configuration, falling back
// to the default three-rung ladder when none is configured
func (c *Config) StageTable() (*workflow.StageTable, error) {
	if len(c.Workflow.Stages) == 0 {
		return workflow.NewStageTable(workflow.DefaultStages())
	}

	stages := make([]workflow.ApprovalStage, 0, len(c.Workflow.Stages))
	for _, sc := range c.Workflow.Stages {
		r, err := role.Parse(sc.Role)
		if err != nil {
			return nil, err
		}
		threshold := sc.Threshold
		if threshold <= 0 {
			threshold = math.Inf(1)
		}
		stages = append(stages, workflow.ApprovalStage{
			Role:      r,
			Threshold: threshold,
			Order:     sc.Order,
		})
	}
	return workflow.NewStageTable(stages)
}

// SLAHours builds the SLA window table from configuration, nil when none
// is configured so the workflow default applies
func (c *Config) SLAHours() (map[role.Role]int, error) {
	if len(c.Workflow.SLAHours) == 0 {
		return nil, nil
	}

	hours := make(map[role.Role]int, len(c.Workflow.SLAHours))
	for name, h := range c.Workflow.SLAHours {
		r, err := role.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("workflow.sla_hours: %w", err)
		}
		if h <= 0 {
			return nil, fmt.Errorf("workflow.sla_hours.%s must be positive", name)
		}
		hours[r] = h
	}
	return hours, nil
}
