package sim

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-koopa/internal/config"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/campaign"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/levels"
	"github.com/vovakirdan/tui-koopa/internal/games/koopa/tile"
)

// Completion is the level completion state.
type Completion uint8

const (
	Playing Completion = iota
	FlagReached
	SlideComplete
	CastleClear
	LevelAdvance
	Dying
	Respawn
	GameOver
)

var completionNames = [...]string{
	Playing:       "playing",
	FlagReached:   "flag_reached",
	SlideComplete: "slide_complete",
	CastleClear:   "castle_clear",
	LevelAdvance:  "level_advance",
	Dying:         "dying",
	Respawn:       "respawn",
	GameOver:      "game_over",
}

func (c Completion) String() string {
	if int(c) < len(completionNames) {
		return completionNames[c]
	}
	return "unknown"
}

// Terminal reports whether the level is over and must be replaced.
func (c Completion) Terminal() bool {
	return c == LevelAdvance || c == Respawn || c == GameOver
}

// Victory reports whether the player has won the level.
func (c Completion) Victory() bool {
	return c == FlagReached || c == SlideComplete || c == CastleClear || c == LevelAdvance
}

// TickResult is what one tick changed, for the HUD and the campaign.
type TickResult struct {
	ScoreDelta int
	CoinDelta  int
	LifeDelta  int
	Completion Completion
}

// Options configures a level attempt.
type Options struct {
	Config config.KoopaConfig
	// Difficulty scales enemy speed and the time budget by campaign
	// progress. Nil leaves both unscaled.
	Difficulty *config.DifficultyManager
	// BossScript overrides the boss brain. Empty falls back to
	// Config.Enemies.BossScript, then the built-in script.
	BossScript []byte
	Logger     *log.Logger
}

const castleClearTime = 2.0

// Level is one attempt at one level. It owns all mutable state of the
// attempt; discarding it cancels the attempt.
type Level struct {
	cfg  config.KoopaConfig
	data *levels.Data
	log  *log.Logger

	grid      *tile.Grid
	player    *Player
	enemies   []*Enemy
	items     []*Item
	fireballs []*Fireball
	effects   []*Effect
	contacts  *contactSpace
	brain     *bossBrain

	completion Completion
	timeLeft   float64
	phaseTimer float64
	speedScale float64
	ticks      int
	nextID     int
	result     TickResult
}

// Load builds a fresh attempt at world-level from src, starting from the
// campaign's carried stats. A zero seed selects the level's default seed.
func Load(src levels.Source, world, level int, seed int64, st campaign.State, opts Options) (*Level, error) {
	if seed == 0 {
		seed = levels.DefaultSeed(world, level)
	}
	d, err := src.Level(world, level, seed)
	if err != nil {
		return nil, fmt.Errorf("sim: load %d-%d: %w", world, level, err)
	}
	return New(d, st.Carry(), opts)
}

// New builds an attempt from already loaded level data.
func New(d *levels.Data, carry campaign.Carry, opts Options) (*Level, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("sim: level %s: %w", d.ID, err)
	}
	cfg := opts.Config
	if cfg.Physics.Gravity == 0 {
		cfg = config.DefaultKoopaConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	l := &Level{
		cfg:        cfg,
		data:       d,
		log:        logger,
		grid:       d.Grid(),
		speedScale: 1,
		nextID:     1,
	}
	budget := d.Time
	if opts.Difficulty != nil && d.World > 0 && d.Level > 0 {
		progress := config.Progress(d.World, d.Level, campaign.LevelsPerWorld)
		l.speedScale = opts.Difficulty.EnemySpeed(1, progress)
		budget = opts.Difficulty.TimeBudget(d.Time, progress)
	}
	l.timeLeft = float64(budget)

	l.contacts = newContactSpace(l.grid.WidthPx(), l.grid.HeightPx())
	l.player = newPlayer(d.PlayerStart, carry, l.grid)
	l.contacts.track(l.player, tagPlayer)

	for _, s := range d.Enemies {
		e := newEnemy(l.newID(), s, l)
		l.enemies = append(l.enemies, e)
		l.contacts.track(e, tagEnemy)
		if s.Kind == levels.Bowser && l.brain == nil {
			script, err := bossScript(opts, cfg)
			if err != nil {
				return nil, err
			}
			if l.brain, err = newBossBrain(script, logger); err != nil {
				return nil, err
			}
		}
	}
	return l, nil
}

func bossScript(opts Options, cfg config.KoopaConfig) ([]byte, error) {
	if len(opts.BossScript) > 0 || cfg.Enemies.BossScript == "" {
		return opts.BossScript, nil
	}
	data, err := os.ReadFile(cfg.Enemies.BossScript)
	if err != nil {
		return nil, fmt.Errorf("sim: read boss script: %w", err)
	}
	return data, nil
}

// Tick advances the attempt by dt seconds. dt is capped at the configured
// maximum frame time; dropped real time is not made up. Once a terminal
// completion is reached further ticks change nothing.
func (l *Level) Tick(in Input, dt float64) TickResult {
	l.result = TickResult{}
	if l.completion.Terminal() || !(dt > 0) {
		l.result.Completion = l.completion
		return l.result
	}
	if limit := l.cfg.Physics.MaxFrameTime; limit > 0 && dt > limit {
		dt = limit
	}
	scale := dt * 60
	l.ticks++

	p := l.player
	p.prevBottom = p.Bottom()
	switch l.completion {
	case Playing:
		l.play(in, dt, scale)
	case FlagReached:
		if p.slideDown(dt) {
			l.completion = SlideComplete
			p.Mode = ModeWalkOff
			p.walkOff = l.cfg.Player.WalkOffTime
		}
	case SlideComplete:
		l.walkOff(dt, scale)
	case CastleClear:
		l.phaseTimer -= dt
		if l.phaseTimer <= 0 {
			l.completion = LevelAdvance
		}
	case Dying:
		if p.fallDead(l, dt, scale) {
			l.completion = Respawn
			if p.Lives <= 0 {
				l.completion = GameOver
			}
		}
	}

	// The world freezes while the player dies.
	if l.completion != Dying && l.completion != Respawn && l.completion != GameOver {
		l.updateEntities(dt, scale)
		if l.completion == Playing {
			l.resolvePlayerContacts()
		}
		l.resolveFireballs()
	}
	for _, fx := range l.effects {
		fx.update(l, dt, scale)
	}
	l.compact()

	l.result.Completion = l.completion
	return l.result
}

func (l *Level) play(in Input, dt, scale float64) {
	p := l.player
	l.timeLeft -= dt
	if l.timeLeft <= 0 {
		l.timeLeft = 0
		l.kill("time up")
		return
	}

	prevX, prevY := p.X, p.Y
	col := p.control(in, l, dt, scale)
	if !p.Finite() {
		l.log.Warn("player state not finite", "x", p.X, "y", p.Y, "vx", p.VX, "vy", p.VY)
		p.X, p.Y, p.VX, p.VY = prevX, prevY, 0, 0
		if !p.Finite() {
			start := l.data.PlayerStart
			p.X, p.Y = float64(start.Col*tile.Size), float64(start.Row*tile.Size)
		}
		l.kill("invalid state")
		return
	}
	if col.Bonked && col.BonkCell.Col >= 0 {
		l.bonk(col.BonkCell)
	}
	l.touchTiles()
	if l.completion == Playing && p.Y > l.grid.HeightPx() {
		l.kill("fell")
	}
	l.contacts.sync(p)
}

// touchTiles handles the non-solid tiles the player overlaps: coins are
// collected, flag and axe end the level, hazards kill.
func (l *Level) touchTiles() {
	p := l.player
	cells := l.grid.Overlapping(p.Rect())
	for _, c := range cells {
		if c.Kind == tile.Coin && l.grid.CollectCoin(c.Col, c.Row) {
			l.addCoin(float64(c.Col*tile.Size)+tile.Size/2, float64(c.Row*tile.Size))
		}
	}
	for _, c := range cells {
		switch c.Kind {
		case tile.Pole, tile.FlagTop:
			l.reachFlag(c)
			return
		case tile.Axe:
			l.clearCastle()
			return
		}
	}
	for _, c := range cells {
		if c.Kind.Hazard() {
			l.kill("hazard")
			return
		}
	}
}

// reachFlag starts the victory slide down the pole the player touched.
func (l *Level) reachFlag(c tile.Cell) {
	if l.completion != Playing || l.player.Dead {
		return
	}
	l.completion = FlagReached
	l.awardTimeBonus()

	base := c.Row
	for {
		k := l.grid.KindAt(c.Col, base+1)
		if k != tile.Pole && k != tile.FlagTop {
			break
		}
		base++
	}
	l.player.startSlide(tile.Pos{Col: c.Col, Row: base}, l.cfg.Player.FlagSlideSpeed)
	l.contacts.sync(l.player)
	l.log.Debug("flag reached", "level", l.data.ID, "time", l.TimeRemaining())
}

// clearCastle drops the bridge and the boss with it.
func (l *Level) clearCastle() {
	if l.completion != Playing || l.player.Dead {
		return
	}
	l.completion = CastleClear
	l.phaseTimer = castleClearTime
	l.awardTimeBonus()

	p := l.player
	p.Mode = ModeCastle
	p.VX, p.VY = 0, 0
	p.Star = 0

	fell := l.grid.CollapseBridge()
	for _, e := range l.enemies {
		if e.Kind == levels.Bowser && e.Active && !e.boss.falling {
			e.boss.falling = true
			l.addScore(l.cfg.Scoring.BossDefeat, e.CenterX(), e.Y)
		}
	}
	l.log.Debug("castle cleared", "level", l.data.ID, "bridge", fell)
}

// awardTimeBonus pays FlagPerSecond for every started second left.
func (l *Level) awardTimeBonus() {
	bonus := int(math.Ceil(l.timeLeft)) * l.cfg.Scoring.FlagPerSecond
	l.addScore(bonus, l.player.CenterX(), l.player.Y)
}

func (l *Level) walkOff(dt, scale float64) {
	p := l.player
	cfg := l.cfg.Player
	p.walkOff -= dt
	p.VX = cfg.WalkOffSpeed
	p.Facing = Right
	p.ApplyGravity(l.cfg.Physics.Gravity, l.cfg.Physics.MaxFall, scale)
	col := p.Move(l.grid, scale)
	p.animate(scale)
	if col.Right || p.walkOff <= 0 || p.X >= l.grid.WidthPx() || p.Y > l.grid.HeightPx() {
		l.completion = LevelAdvance
	}
}

func (l *Level) updateEntities(dt, scale float64) {
	for _, e := range l.enemies {
		if !e.Active || !l.finite(&e.Body, "enemy", e.ID) {
			continue
		}
		updateEnemy(e, l, dt, scale)
		if e.Active && l.finite(&e.Body, "enemy", e.ID) {
			l.contacts.sync(e)
		}
	}
	for _, it := range l.items {
		if !it.Active || !l.finite(&it.Body, "item", it.ID) {
			continue
		}
		it.update(l, scale)
		if it.Active && l.finite(&it.Body, "item", it.ID) {
			l.contacts.sync(it)
		}
	}
	for _, f := range l.fireballs {
		if !f.Active || !l.finite(&f.Body, "fireball", f.ID) {
			continue
		}
		f.update(l, dt, scale)
		if f.Active && l.finite(&f.Body, "fireball", f.ID) {
			l.contacts.sync(f)
		}
	}
}

// finite deactivates an entity whose position or velocity stopped being
// a number.
func (l *Level) finite(b *Body, entity string, id int) bool {
	if b.Finite() {
		return true
	}
	l.log.Warn("entity state not finite, removing", "entity", entity, "id", id, "x", b.X, "y", b.Y)
	b.Active = false
	return false
}

func (l *Level) resolvePlayerContacts() {
	p := l.player
	if p.Mode != ModeNormal || p.Dead {
		return
	}
	descending := p.VY > 0
	for _, t := range l.contacts.touching(p, tagEnemy) {
		e := t.(*Enemy)
		if !e.Active || !touchesEnemy(p.Rect(), e) {
			continue
		}
		if p.Star > 0 {
			points := l.cfg.Scoring.Stomp
			if e.Kind == levels.Bowser {
				points = l.cfg.Scoring.BossDefeat
			}
			l.defeat(e, points)
			continue
		}
		// Feet as they were before this tick's move.
		if descending && e.Stompable() && p.prevBottom <= e.Y+e.H/2 && e.stomp(l) {
			p.VY = l.cfg.Player.StompBounce
			p.OnGround = false
			continue
		}
		if p.Invincible > 0 {
			continue
		}
		if e.contact(l) {
			l.damagePlayer()
			if p.Dead {
				return
			}
		}
	}
	for _, t := range l.contacts.touching(p, tagItem) {
		it := t.(*Item)
		if it.Active && !it.Emerging {
			it.collect(l)
		}
	}
}

func (l *Level) resolveFireballs() {
	for _, f := range l.fireballs {
		if !f.Active {
			continue
		}
		for _, t := range l.contacts.touching(f, tagEnemy) {
			e := t.(*Enemy)
			if !touchesEnemy(f.Rect(), e) {
				continue
			}
			e.hitByFireball(l)
			f.explode(l)
			break
		}
	}
}

func (l *Level) damagePlayer() {
	if l.player.hurt(l.cfg.Player.InvincibleTime) {
		l.kill("enemy")
	}
}

// kill starts the death sequence. Lives are spent at once. Nothing can
// kill the player after victory.
func (l *Level) kill(reason string) {
	p := l.player
	if p.Dead || l.completion != Playing {
		return
	}
	p.die(l.cfg.Player.DeathTime)
	l.completion = Dying
	l.result.LifeDelta--
	l.log.Debug("player died", "level", l.data.ID, "reason", reason, "lives", p.Lives)
}

// defeat removes an enemy with a knock-off effect and awards points.
func (l *Level) defeat(e *Enemy, points int) {
	if !e.Active {
		return
	}
	e.Active = false
	fx := newEffect(l.newID(), EffectDefeat, e.X, e.Y, 0)
	fx.W, fx.H = e.W, e.H
	fx.Label = e.Kind.String()
	l.effects = append(l.effects, fx)
	l.addScore(points, e.CenterX(), e.Y)
}

func (l *Level) addScore(points int, x, y float64) {
	if points <= 0 {
		return
	}
	l.player.Score += points
	l.result.ScoreDelta += points
	l.effects = append(l.effects, newEffect(l.newID(), EffectScore, x, y, points))
}

// addCoin collects one coin. Every CoinsPerLife coins wrap to an extra
// life.
func (l *Level) addCoin(x, y float64) {
	p := l.player
	p.Coins++
	l.result.CoinDelta++
	l.addScore(l.cfg.Scoring.Coin, x, y)
	per := l.cfg.Scoring.CoinsPerLife
	if per <= 0 {
		per = 100
	}
	if p.Coins >= per {
		p.Coins -= per
		l.addLife(x, y)
	}
}

func (l *Level) addLife(x, y float64) {
	l.player.Lives++
	l.result.LifeDelta++
	fx := newEffect(l.newID(), EffectScore, x, y, 0)
	fx.Label = "1UP"
	l.effects = append(l.effects, fx)
}

func (l *Level) newID() int {
	id := l.nextID
	l.nextID++
	return id
}

// compact drops inactive entities.
func (l *Level) compact() {
	l.enemies = keepActive(l, l.enemies)
	l.items = keepActive(l, l.items)
	l.fireballs = keepActive(l, l.fireballs)
	effects := l.effects[:0]
	for _, fx := range l.effects {
		if fx.Active {
			effects = append(effects, fx)
		}
	}
	clear(l.effects[len(effects):])
	l.effects = effects
}

func keepActive[T tracked](l *Level, list []T) []T {
	out := list[:0]
	for _, t := range list {
		if t.body().Active {
			out = append(out, t)
			continue
		}
		l.contacts.untrack(t)
	}
	clear(list[len(out):])
	return out
}

// Grid returns the live tile grid. Use Snapshot for a detached copy.
func (l *Level) Grid() *tile.Grid { return l.grid }

// Data returns the level the attempt was built from.
func (l *Level) Data() *levels.Data { return l.data }

// Player returns the player entity.
func (l *Level) Player() *Player { return l.player }

// Completion returns the current completion state.
func (l *Level) Completion() Completion { return l.completion }

// TimeRemaining returns the whole seconds left on the timer.
func (l *Level) TimeRemaining() int { return int(math.Ceil(l.timeLeft)) }

// Ticks returns the number of simulated ticks.
func (l *Level) Ticks() int { return l.ticks }

// Carry returns the player's stats for the campaign.
func (l *Level) Carry() campaign.Carry { return l.player.Carry() }
