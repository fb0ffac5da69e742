package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/guesspot/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings configures the round rules and administration
type GameSettings struct {
	RegistrationFee int64  `hcl:"registration_fee,optional"`
	MaxAttempts     int    `hcl:"max_attempts,optional"`
	MinNumber       int    `hcl:"min_number,optional"`
	MaxNumber       int    `hcl:"max_number,optional"`
	MaxPlayers      int    `hcl:"max_players,optional"`
	Admin           string `hcl:"admin,optional"`
	Seed            int64  `hcl:"seed,optional"` // 0 means time-seeded
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	rules := game.DefaultRules()
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			RegistrationFee: rules.RegistrationFee,
			MaxAttempts:     rules.MaxAttempts,
			MinNumber:       rules.MinNumber,
			MaxNumber:       rules.MaxNumber,
			MaxPlayers:      rules.MaxPlayers,
			Admin:           "house",
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	def := DefaultConfig()

	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}

	if c.Game.RegistrationFee == 0 {
		c.Game.RegistrationFee = def.Game.RegistrationFee
	}
	if c.Game.MaxAttempts == 0 {
		c.Game.MaxAttempts = def.Game.MaxAttempts
	}
	if c.Game.MinNumber == 0 {
		c.Game.MinNumber = def.Game.MinNumber
	}
	if c.Game.MaxNumber == 0 {
		c.Game.MaxNumber = def.Game.MaxNumber
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = def.Game.MaxPlayers
	}
	if c.Game.Admin == "" {
		c.Game.Admin = def.Game.Admin
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.Admin == "" {
		return fmt.Errorf("game admin must be set")
	}
	return c.Rules().Validate()
}

// Rules converts the game settings into round rules
func (c *Config) Rules() game.Rules {
	return game.Rules{
		RegistrationFee: c.Game.RegistrationFee,
		MaxAttempts:     c.Game.MaxAttempts,
		MinNumber:       c.Game.MinNumber,
		MaxNumber:       c.Game.MaxNumber,
		MaxPlayers:      c.Game.MaxPlayers,
	}
}

// ServerAddress returns the full listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
