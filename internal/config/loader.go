package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadKoopa loads the koopa configuration. Files may be partial; missing
// keys keep their built-in values.
// Search order: customPath -> ~/.koopa/configs/koopa.yaml -> ./configs/koopa.yaml -> embedded default
func LoadKoopa(customPath string) (KoopaConfig, error) {
	cfg := DefaultKoopaConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("koopa.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultKoopaConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/koopa.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultKoopaConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultKoopaYAML, &cfg); err != nil {
		return DefaultKoopaConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// HomeDir returns ~/.koopa, or empty if home is unavailable.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".koopa")
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	dir := HomeDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "configs", filename)
}

// ApplyKoopaPreset modifies the config based on a difficulty preset.
func ApplyKoopaPreset(cfg *KoopaConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust gameplay based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Campaign.Lives = 5
		cfg.Player.InvincibleTime = 3.0
	case DifficultyHard:
		cfg.Campaign.Lives = 2
		cfg.Enemies.BossHP += 3
	}
}
