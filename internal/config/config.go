// Package config provides YAML-based game configuration loading and
// difficulty management for koopa.
package config

// KoopaConfig contains all tunables of the platformer simulation.
// Speeds and accelerations are in pixels per 60 Hz frame; the simulation
// scales them by dt*60. Times are in seconds.
type KoopaConfig struct {
	Physics    KoopaPhysics     `yaml:"physics"`
	Player     KoopaPlayer      `yaml:"player"`
	Enemies    KoopaEnemies     `yaml:"enemies"`
	Scoring    KoopaScoring     `yaml:"scoring"`
	Campaign   KoopaCampaign    `yaml:"campaign"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// KoopaPhysics defines world-wide physics parameters.
type KoopaPhysics struct {
	Gravity      float64 `yaml:"gravity"`
	GravityHold  float64 `yaml:"gravity_hold"` // while jump is held and rising
	MaxFall      float64 `yaml:"max_fall"`
	MaxFrameTime float64 `yaml:"max_frame_time"` // dt cap per tick
}

// KoopaPlayer defines movement and timer parameters of the player.
type KoopaPlayer struct {
	WalkSpeed      float64 `yaml:"walk_speed"`
	RunSpeed       float64 `yaml:"run_speed"`
	WalkAccel      float64 `yaml:"walk_accel"`
	RunAccel       float64 `yaml:"run_accel"`
	Decel          float64 `yaml:"decel"`
	SkidDecel      float64 `yaml:"skid_decel"`
	AirAccel       float64 `yaml:"air_accel"`
	JumpWalk       float64 `yaml:"jump_walk"` // negative: up
	JumpRun        float64 `yaml:"jump_run"`
	JumpHoldTime   float64 `yaml:"jump_hold_time"`
	CoyoteTime     float64 `yaml:"coyote_time"`
	JumpBuffer     float64 `yaml:"jump_buffer"`
	StompBounce    float64 `yaml:"stomp_bounce"`
	InvincibleTime float64 `yaml:"invincible_time"`
	StarTime       float64 `yaml:"star_time"`
	DeathTime      float64 `yaml:"death_time"`
	FlagSlideSpeed float64 `yaml:"flag_slide_speed"`
	WalkOffSpeed   float64 `yaml:"walk_off_speed"`
	WalkOffTime    float64 `yaml:"walk_off_time"`
	FireballSpeed  float64 `yaml:"fireball_speed"`
	MaxFireballs   int     `yaml:"max_fireballs"`
}

// KoopaEnemies defines enemy behaviour parameters.
type KoopaEnemies struct {
	WalkerSpeed    float64 `yaml:"walker_speed"`
	ShellSpeed     float64 `yaml:"shell_speed"`
	ShellRevert    float64 `yaml:"shell_revert"`
	KickGrace      float64 `yaml:"kick_grace"`
	SquishTime     float64 `yaml:"squish_time"`
	FlyerSpeed     float64 `yaml:"flyer_speed"`
	FlyerAmplitude float64 `yaml:"flyer_amplitude"` // pixels
	FlyerPeriod    float64 `yaml:"flyer_period"`
	FlyerRange     int     `yaml:"flyer_range"` // tiles from spawn, 0 = unbounded
	PiranhaHide    float64 `yaml:"piranha_hide"`
	PiranhaShow    float64 `yaml:"piranha_show"`
	PiranhaRise    float64 `yaml:"piranha_rise"` // pixels per second
	FirebarSpeed   float64 `yaml:"firebar_speed"` // radians per second
	FirebarLength  int     `yaml:"firebar_length"`
	BossHP         int     `yaml:"boss_hp"`
	BossSpeed      float64 `yaml:"boss_speed"`
	BossScript     string  `yaml:"boss_script,omitempty"` // path; empty uses the built-in script
}

// KoopaScoring defines point awards.
type KoopaScoring struct {
	Brick         int `yaml:"brick"`
	Coin          int `yaml:"coin"`
	Stomp         int `yaml:"stomp"`
	Powerup       int `yaml:"powerup"`
	FlagPerSecond int `yaml:"flag_per_second"`
	ShellKick     int `yaml:"shell_kick"`
	FireballKill  int `yaml:"fireball_kill"`
	BossDefeat    int `yaml:"boss_defeat"`
	CoinsPerLife  int `yaml:"coins_per_life"`
}

// KoopaCampaign defines campaign-wide settings.
type KoopaCampaign struct {
	Lives  int `yaml:"lives"`
	Worlds int `yaml:"worlds"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases through the campaign.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "campaign" or "none"
	MaxAt int    `yaml:"max_at"` // levels cleared at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // added to enemy speed at max difficulty
	TimeReduction   float64 `yaml:"time_reduction"`   // fraction of the time budget removed at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ParsePreset validates a preset name. Empty selects normal.
func ParsePreset(name string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(name); p {
	case "":
		return DifficultyNormal, true
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, true
	}
	return "", false
}
