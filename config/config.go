// Package config loads and writes the server's sectioned configuration
// file: campaign rules, logging levels, the comms webhook, and the
// scoring table.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// defaultFileContent seeds a brand new config file the first time the
// server runs against a directory that doesn't have one yet.
const defaultFileContent = `[campaign]
MAX_INFANTRY = 4
AA_RED = "ZSU-23-4 Shilka"
AA_BLUE = "Vulcan"

[logging]
LOG_FILE_LEVEL = 2
LOG_CONSOLE_LEVEL = 2

[comms]
USER = DynC Server

[scoring]
UNIT_DISTANCE_MAX_MULTIPLIER = 1.0
UNIT_BASE_SCORE = 10.0
PLAYER_EJECT_SCORE = 50.0
PLAYER_DEATH_SCORE = 100.0
AI_EJECT_SCORE = 5.0
AI_DEATH_SCORE = 10.0
`

// WriteDefault creates path with the default config content unless a file
// already exists there.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(defaultFileContent), 0o644)
}

// Config is the fully resolved server configuration, defaults applied.
type Config struct {
	Campaign Campaign
	Logging  Logging
	Comms    Comms
	Scoring  Scoring
}

// Campaign holds the rules governing infantry capacity and which unit
// types are permitted to act as AA for each coalition.
type Campaign struct {
	MaxInfantry int
	AARed       []string
	AABlue      []string
}

// Logging controls the minimum level written to each log sink. Levels
// follow the source's convention: 1=Debug 2=Info 3=Warning 4=Error
// 5=Critical.
type Logging struct {
	FileLevel    int
	ConsoleLevel int
	FilePath     string
}

// Comms configures the optional chat webhook notifications are posted
// to. URL empty means notifications are disabled.
type Comms struct {
	URL  string
	User string
}

// Scoring holds the point values awarded for kills and ejections, and the
// distance-based multiplier cap applied to unit destruction scores.
type Scoring struct {
	UnitDistanceMaxMultiplier float64
	UnitBaseScore             float64
	PlayerEjectScore          float64
	PlayerDeathScore          float64
	AIEjectScore              float64
	AIDeathScore              float64
}

func defaults() *viper.Viper {
	v := viper.New()
	v.SetConfigType("ini")

	v.SetDefault("campaign.max_infantry", 4)
	v.SetDefault("campaign.aa_red", `"ZSU-23-4 Shilka"`)
	v.SetDefault("campaign.aa_blue", `"Vulcan"`)

	v.SetDefault("logging.log_file_level", 2)
	v.SetDefault("logging.log_console_level", 2)
	v.SetDefault("logging.log_file", "")

	v.SetDefault("comms.url", "")
	v.SetDefault("comms.user", "DynC Server")

	v.SetDefault("scoring.unit_distance_max_multiplier", 1.0)
	v.SetDefault("scoring.unit_base_score", 10.0)
	v.SetDefault("scoring.player_eject_score", 50.0)
	v.SetDefault("scoring.player_death_score", 100.0)
	v.SetDefault("scoring.ai_eject_score", 5.0)
	v.SetDefault("scoring.ai_death_score", 10.0)
	return v
}

// Load reads path, applying the package's defaults for any option the
// file omits. A missing file is not an error: Load returns defaults, and
// the caller is expected to call WriteDefault to seed the file for next
// time, mirroring the source's "write default content on first run" behavior.
func Load(path string) (*Config, error) {
	v := defaults()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Campaign: Campaign{
			MaxInfantry: v.GetInt("campaign.max_infantry"),
			AARed:       splitQuotedList(v.GetString("campaign.aa_red")),
			AABlue:      splitQuotedList(v.GetString("campaign.aa_blue")),
		},
		Logging: Logging{
			FileLevel:    v.GetInt("logging.log_file_level"),
			ConsoleLevel: v.GetInt("logging.log_console_level"),
			FilePath:     v.GetString("logging.log_file"),
		},
		Comms: Comms{
			URL:  v.GetString("comms.url"),
			User: v.GetString("comms.user"),
		},
		Scoring: Scoring{
			UnitDistanceMaxMultiplier: v.GetFloat64("scoring.unit_distance_max_multiplier"),
			UnitBaseScore:             v.GetFloat64("scoring.unit_base_score"),
			PlayerEjectScore:          v.GetFloat64("scoring.player_eject_score"),
			PlayerDeathScore:          v.GetFloat64("scoring.player_death_score"),
			AIEjectScore:              v.GetFloat64("scoring.ai_eject_score"),
			AIDeathScore:              v.GetFloat64("scoring.ai_death_score"),
		},
	}
	return cfg, nil
}

// splitQuotedList parses a comma-separated list of double-quoted unit
// names, e.g. `"Vulcan", "M1097 Avenger"`, the format the source's AA_RED
// / AA_BLUE options use.
func splitQuotedList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
