package config

import (
	"math"

	"github.com/vovakirdan/tui-koopa/internal/core"
)

// DifficultyManager derives per-level parameters from campaign progress.
type DifficultyManager struct {
	cfg          DifficultyConfig
	initialLevel float64
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg DifficultyConfig) *DifficultyManager {
	return &DifficultyManager{
		cfg:          cfg,
		initialLevel: cfg.InitialLevel,
	}
}

// SetInitialLevel overrides the initial difficulty level (0.0 to 1.0).
func (d *DifficultyManager) SetInitialLevel(level float64) {
	d.initialLevel = core.ClampF(level, 0.0, 1.0)
}

// IsEnabled returns whether difficulty progression is active.
func (d *DifficultyManager) IsEnabled() bool {
	return d.cfg.Enabled && d.cfg.Progression.Type != "none"
}

// Progress converts a world/level pair into the number of levels cleared
// before it.
func Progress(world, level, levelsPerWorld int) int {
	return (world-1)*levelsPerWorld + (level - 1)
}

// Level returns the difficulty (0.0 to 1.0) after clearing progress levels.
func (d *DifficultyManager) Level(progress int) float64 {
	if !d.IsEnabled() {
		return d.initialLevel
	}

	maxAt := float64(d.cfg.Progression.MaxAt)
	if maxAt <= 0 {
		maxAt = 1 // Prevent division by zero
	}
	p := core.ClampF(float64(progress)/maxAt, 0.0, 1.0)

	// Interpolate from initial level to 1.0
	return d.initialLevel + p*(1.0-d.initialLevel)
}

// EnemySpeed scales an enemy base speed by difficulty.
func (d *DifficultyManager) EnemySpeed(base float64, progress int) float64 {
	return base * (1.0 + d.Level(progress)*d.cfg.Scaling.SpeedMultiplier)
}

// TimeBudget shrinks a level time budget by difficulty, never below 100.
func (d *DifficultyManager) TimeBudget(base, progress int) int {
	cut := d.Level(progress) * d.cfg.Scaling.TimeReduction
	result := int(math.Round(float64(base) * (1.0 - cut)))
	if result < 100 { // Minimum playable budget
		result = min(base, 100)
	}
	return result
}
