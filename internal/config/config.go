// Package config loads the kernel YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/rsckernel/internal/game/combat"
	"github.com/udisondev/rsckernel/internal/model"
	"github.com/udisondev/rsckernel/internal/region"
)

// EnvPath overrides the config file path.
const EnvPath = "RSCKERNEL_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/rsckernel.yaml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Drop log backend names.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendJournal  = "journal"
)

// Rates holds the server rate multipliers.
type Rates struct {
	NpcRespawnMultiplier   float64 `yaml:"npc_respawn_multiplier"`
	CombatRewardMultiplier float64 `yaml:"combat_reward_multiplier"`
	RangedRewardMultiplier float64 `yaml:"ranged_reward_multiplier"`
	MagicRewardMultiplier  float64 `yaml:"magic_reward_multiplier"`
}

// DefaultRates returns x1 rates.
func DefaultRates() Rates {
	return Rates{
		NpcRespawnMultiplier:   1.0,
		CombatRewardMultiplier: 1.0,
		RangedRewardMultiplier: 1.0,
		MagicRewardMultiplier:  1.0,
	}
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DropLogConfig selects where drop and kill records go.
type DropLogConfig struct {
	Backends   []string `yaml:"backends"`
	SQLitePath string   `yaml:"sqlite_path"`
	JournalDir string   `yaml:"journal_dir"`
	QueueSize  int      `yaml:"queue_size"`
}

// Enabled reports whether backend is listed.
func (d DropLogConfig) Enabled(backend string) bool {
	for _, b := range d.Backends {
		if b == backend {
			return true
		}
	}
	return false
}

// ObserverConfig configures the websocket event feed.
type ObserverConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	AllowRemote bool   `yaml:"allow_remote"`
	Buffer      int    `yaml:"buffer"`
}

// BandConfig is one wilderness band as written in YAML.
type BandConfig struct {
	Name  string `yaml:"name"`
	MinX  int32  `yaml:"min_x"`
	MinY  int32  `yaml:"min_y"`
	MaxX  int32  `yaml:"max_x"`
	MaxY  int32  `yaml:"max_y"`
	State string `yaml:"state"` // members | free
}

// Kernel holds all configuration of the kernel.
type Kernel struct {
	LogLevel string        `yaml:"log_level"`
	GameTick time.Duration `yaml:"game_tick"`
	AITick   time.Duration `yaml:"ai_tick"`
	Workers  int           `yaml:"workers"`

	MemberWorld           bool          `yaml:"member_world"`
	WantCustomSprites     bool          `yaml:"want_custom_sprites"`
	WantNewRareDropTables bool          `yaml:"want_new_rare_drop_tables"`
	LootOwner             string        `yaml:"loot_owner"` // top_damage | finishing_blow
	InteractionRange      int32         `yaml:"interaction_range"`
	StatRestoreInterval   time.Duration `yaml:"stat_restore_interval"`
	SpawnImmunity         time.Duration `yaml:"spawn_immunity"`
	CombatTime            time.Duration `yaml:"combat_time"`
	PoisonInterval        time.Duration `yaml:"poison_interval"`
	CatalogDir            string        `yaml:"catalog_dir"`

	Rates           Rates          `yaml:"rates"`
	Database        DatabaseConfig `yaml:"database"`
	DropLog         DropLogConfig  `yaml:"drop_log"`
	Observer        ObserverConfig `yaml:"observer"`
	WildernessBands []BandConfig   `yaml:"wilderness_bands"`
}

// DefaultKernel returns Kernel config with sensible defaults.
func DefaultKernel() Kernel {
	return Kernel{
		LogLevel:              "info",
		GameTick:              600 * time.Millisecond,
		AITick:                time.Second,
		Workers:               4,
		MemberWorld:           true,
		WantCustomSprites:     true,
		WantNewRareDropTables: true,
		LootOwner:             combat.LootTopDamage.String(),
		InteractionRange:      1,
		StatRestoreInterval:   60 * time.Second,
		SpawnImmunity:         640 * time.Millisecond,
		CombatTime:            10 * time.Second,
		PoisonInterval:        20 * time.Second,
		CatalogDir:            "config/catalog",
		Rates:                 DefaultRates(),
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "rsckernel",
			Password: "rsckernel",
			DBName:   "rsckernel",
			SSLMode:  "disable",
		},
		DropLog: DropLogConfig{
			Backends:   []string{BackendJournal},
			SQLitePath: "data/droplog.sqlite",
			JournalDir: "data/journal",
			QueueSize:  4096,
		},
		Observer: ObserverConfig{
			Addr:   "127.0.0.1:8090",
			Buffer: 256,
		},
		WildernessBands: defaultBandConfigs(),
	}
}

func defaultBandConfigs() []BandConfig {
	all := region.DefaultBands().All()
	out := make([]BandConfig, 0, len(all))
	for _, b := range all {
		out = append(out, BandConfig{
			Name:  b.Name,
			MinX:  b.Rect.MinX,
			MinY:  b.Rect.MinY,
			MaxX:  b.Rect.MaxX,
			MaxY:  b.Rect.MaxY,
			State: b.State.String(),
		})
	}
	return out
}

// Path returns the config path from the environment or DefaultPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadKernel loads kernel config from a YAML file and validates it.
// If the file doesn't exist, returns defaults.
func LoadKernel(path string) (Kernel, error) {
	cfg := DefaultKernel()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enum spellings.
func (k Kernel) Validate() error {
	var errs []error
	if _, err := k.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if k.GameTick <= 0 {
		errs = append(errs, fmt.Errorf("game_tick must be positive: %w", ErrInvalid))
	}
	if k.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1: %w", ErrInvalid))
	}
	if _, err := combat.ParseLootOwnerRule(k.LootOwner); err != nil {
		errs = append(errs, fmt.Errorf("loot_owner %q: %w", k.LootOwner, ErrInvalid))
	}
	if k.InteractionRange < 0 {
		errs = append(errs, fmt.Errorf("interaction_range must not be negative: %w", ErrInvalid))
	}
	if k.CatalogDir == "" {
		errs = append(errs, fmt.Errorf("catalog_dir is required: %w", ErrInvalid))
	}
	for name, v := range map[string]float64{
		"npc_respawn_multiplier":   k.Rates.NpcRespawnMultiplier,
		"combat_reward_multiplier": k.Rates.CombatRewardMultiplier,
		"ranged_reward_multiplier": k.Rates.RangedRewardMultiplier,
		"magic_reward_multiplier":  k.Rates.MagicRewardMultiplier,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("rates.%s must not be negative: %w", name, ErrInvalid))
		}
	}
	for _, b := range k.DropLog.Backends {
		switch b {
		case BackendPostgres, BackendSQLite, BackendJournal:
		default:
			errs = append(errs, fmt.Errorf("drop_log backend %q: %w", b, ErrInvalid))
		}
	}
	if _, err := k.Bands(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel converts log_level to a slog level.
func (k Kernel) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(k.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", k.LogLevel, ErrInvalid)
	}
}

// Bands builds the wilderness band list in config order.
func (k Kernel) Bands() (region.Bands, error) {
	list := make([]region.WildernessBand, 0, len(k.WildernessBands))
	for i, b := range k.WildernessBands {
		state, ok := region.ParseBandState(b.State)
		if !ok {
			return region.Bands{}, fmt.Errorf("wilderness_bands[%d] state %q: %w", i, b.State, ErrInvalid)
		}
		list = append(list, region.WildernessBand{
			Name:  b.Name,
			Rect:  model.NewRect(b.MinX, b.MinY, b.MaxX, b.MaxY),
			State: state,
		})
	}
	return region.NewBands(list...), nil
}

// Combat maps the config onto the lifecycle settings.
func (k Kernel) Combat() combat.Config {
	cfg := combat.DefaultConfig()
	cfg.MemberWorld = k.MemberWorld
	cfg.CustomRareTables = k.WantCustomSprites
	cfg.SharedRareTables = k.WantNewRareDropTables
	if rule, err := combat.ParseLootOwnerRule(k.LootOwner); err == nil {
		cfg.LootOwner = rule
	}
	cfg.RespawnMultiplier = k.Rates.NpcRespawnMultiplier
	cfg.CombatMultiplier = k.Rates.CombatRewardMultiplier
	cfg.RangedMultiplier = k.Rates.RangedRewardMultiplier
	cfg.MagicMultiplier = k.Rates.MagicRewardMultiplier
	if k.SpawnImmunity > 0 {
		cfg.SpawnImmunity = k.SpawnImmunity
	}
	if k.CombatTime > 0 {
		cfg.CombatTime = k.CombatTime
	}
	if k.PoisonInterval > 0 {
		cfg.PoisonInterval = k.PoisonInterval
	}
	return cfg
}
