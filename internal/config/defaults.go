package config

import (
	_ "embed"
)

//go:embed defaults/koopa.yaml
var defaultKoopaYAML []byte

// DefaultKoopaConfig returns the built-in koopa configuration.
func DefaultKoopaConfig() KoopaConfig {
	return KoopaConfig{
		Physics: KoopaPhysics{
			Gravity:      0.4375,
			GravityHold:  0.1875,
			MaxFall:      4.5,
			MaxFrameTime: 1.0 / 20,
		},
		Player: KoopaPlayer{
			WalkSpeed:      1.3,
			RunSpeed:       2.5,
			WalkAccel:      0.15,
			RunAccel:       0.2,
			Decel:          0.1,
			SkidDecel:      0.25,
			AirAccel:       0.1,
			JumpWalk:       -4.0,
			JumpRun:        -5.0,
			JumpHoldTime:   0.25,
			CoyoteTime:     0.1,
			JumpBuffer:     0.1,
			StompBounce:    -2.4,
			InvincibleTime: 2.0,
			StarTime:       10.0,
			DeathTime:      3.0,
			FlagSlideSpeed: 2.0,
			WalkOffSpeed:   1.5,
			WalkOffTime:    3.0,
			FireballSpeed:  4.0,
			MaxFireballs:   2,
		},
		Enemies: KoopaEnemies{
			WalkerSpeed:    0.5,
			ShellSpeed:     4.0,
			ShellRevert:    5.0,
			KickGrace:      0.25,
			SquishTime:     0.5,
			FlyerSpeed:     0.5,
			FlyerAmplitude: 24,
			FlyerPeriod:    2.0,
			FlyerRange:     4,
			PiranhaHide:    2.0,
			PiranhaShow:    1.5,
			PiranhaRise:    30,
			FirebarSpeed:   1.5,
			FirebarLength:  5,
			BossHP:         5,
			BossSpeed:      0.6,
		},
		Scoring: KoopaScoring{
			Brick:         50,
			Coin:          200,
			Stomp:         100,
			Powerup:       1000,
			FlagPerSecond: 50,
			ShellKick:     400,
			FireballKill:  200,
			BossDefeat:    5000,
			CoinsPerLife:  100,
		},
		Campaign: KoopaCampaign{
			Lives:  3,
			Worlds: 8,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "campaign",
				MaxAt: 31,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 0.5,
				TimeReduction:   0.25,
			},
		},
	}
}
