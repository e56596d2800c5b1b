// Package level loads course definitions: spawn slots, player colors, static
// geometry, trigger zones and gameplay tuning.
package level

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/vmath"
)

//go:embed default.toml
var defaultLevel []byte

type ZoneKind string

const (
	ZoneDeath      ZoneKind = "death"
	ZoneRespawn    ZoneKind = "respawn"
	ZoneCheckpoint ZoneKind = "checkpoint"
	ZoneVictory    ZoneKind = "victory"
)

type Vec [3]float64

func (v Vec) V3() vmath.Vec3 { return vmath.V3(v[0], v[1], v[2]) }

// Point is a position with a heading in degrees around the up axis.
type Point struct {
	Position Vec     `toml:"position"`
	Yaw      float64 `toml:"yaw"`
}

func (p Point) Transform() match.Transform {
	return match.Transform{Position: p.Position.V3(), Rotation: vmath.AxisAngle(vmath.Up, p.Yaw)}
}

type Static struct {
	Name   string `toml:"name"`
	Center Vec    `toml:"center"`
	Size   Vec    `toml:"size"`
}

func (s Static) Box() vmath.AABB { return vmath.Box(s.Center.V3(), s.Size.V3()) }

type Zone struct {
	Kind     ZoneKind `toml:"kind"`
	Name     string   `toml:"name"`
	Center   Vec      `toml:"center"`
	Size     Vec      `toml:"size"`
	Cooldown float64  `toml:"cooldown"`
	Window   float64  `toml:"window"`
	Points   []Point  `toml:"point"`
}

func (z Zone) Box() vmath.AABB { return vmath.Box(z.Center.V3(), z.Size.V3()) }

func (z Zone) Transforms() []match.Transform {
	out := make([]match.Transform, len(z.Points))
	for i, p := range z.Points {
		out[i] = p.Transform()
	}
	return out
}

type Player struct {
	CapsuleRadius float64 `toml:"capsule_radius"`
	CapsuleHeight float64 `toml:"capsule_height"`
	AnchorHeight  float64 `toml:"anchor_height"`
}

// Capsule returns the player's collision capsule with its base at the body
// origin.
func (p Player) Capsule() match.Capsule {
	return match.Capsule{
		Center: vmath.V3(0, p.CapsuleHeight/2, 0),
		Radius: p.CapsuleRadius,
		Height: p.CapsuleHeight,
	}
}

// Tuning fields are pointers so that an explicit zero in the file is kept
// and an omitted key falls back to the default.
type Movement struct {
	MoveSpeed           *float64 `toml:"move_speed"`
	JumpImpulse         *float64 `toml:"jump_impulse"`
	AirControl          *float64 `toml:"air_control"`
	GroundCheckDistance *float64 `toml:"ground_check_distance"`
	TurnRate            *float64 `toml:"turn_rate"`
}

type Camera struct {
	Offset             *Vec     `toml:"offset"`
	PositionSmoothTime *float64 `toml:"position_smooth_time"`
	RotationRate       *float64 `toml:"rotation_rate"`
	LookAtTarget       *bool    `toml:"look_at_target"`
	MinFOV             *float64 `toml:"min_fov"`
	MaxFOV             *float64 `toml:"max_fov"`
	SpreadMin          *float64 `toml:"spread_min"`
	SpreadMax          *float64 `toml:"spread_max"`
	FOVSmoothTime      *float64 `toml:"fov_smooth_time"`
}

type Sniper struct {
	Sensitivity *float64 `toml:"sensitivity"`
	MinPitch    *float64 `toml:"min_pitch"`
	MaxPitch    *float64 `toml:"max_pitch"`
	MaxDistance *float64 `toml:"max_distance"`
	Cooldown    *float64 `toml:"cooldown"`
	HoldToFire  bool     `toml:"hold_to_fire"`
}

type Level struct {
	Name          string   `toml:"name"`
	TitleScene    int      `toml:"title_scene"`
	ArenaScene    int      `toml:"arena_scene"`
	RestartScene  int      `toml:"restart_scene"`
	JoinLockDelay float64  `toml:"join_lock_delay"`
	Colors        []string `toml:"colors"`
	Slots         []Point  `toml:"slot"`
	Statics       []Static `toml:"static"`
	Zones         []Zone   `toml:"zone"`
	Player        Player   `toml:"player"`
	Movement      Movement `toml:"movement"`
	Camera        Camera   `toml:"camera"`
	Sniper        Sniper   `toml:"sniper"`
}

// Default returns the embedded course.
func Default() (*Level, error) {
	return Parse(defaultLevel)
}

// Load reads a course from path, or the embedded default when path is empty.
func Load(path string) (*Level, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var l Level
	md, err := toml.Decode(string(data), &l)
	if err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decoding level: unknown key %q", undecoded[0].String())
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the structural rules a course must satisfy. It does not
// require len(Colors) == len(Slots); the smaller of the two caps joins.
func (l *Level) Validate() error {
	var errs []error
	if len(l.Slots) == 0 {
		errs = append(errs, errors.New("no spawn slots"))
	}
	if len(l.Colors) == 0 {
		errs = append(errs, errors.New("no player colors"))
	}
	for i, c := range l.Colors {
		if _, err := ParseColor(c); err != nil {
			errs = append(errs, fmt.Errorf("color %d: %w", i, err))
		}
	}
	if l.Player.CapsuleRadius <= 0 || l.Player.CapsuleHeight <= 0 {
		errs = append(errs, errors.New("player capsule must have positive radius and height"))
	}
	if l.JoinLockDelay < 0 {
		errs = append(errs, errors.New("join_lock_delay must not be negative"))
	}
	errs = append(errs, l.validateTuning()...)
	for i, z := range l.Zones {
		if z.Size[0] <= 0 || z.Size[1] <= 0 || z.Size[2] <= 0 {
			errs = append(errs, fmt.Errorf("zone %d (%s): size must be positive", i, z.Name))
		}
		switch z.Kind {
		case ZoneDeath, ZoneVictory:
		case ZoneRespawn:
			if len(z.Points) == 0 {
				errs = append(errs, fmt.Errorf("zone %d (%s): respawn zone needs points", i, z.Name))
			}
			if z.Cooldown < 0 {
				errs = append(errs, fmt.Errorf("zone %d (%s): cooldown must not be negative", i, z.Name))
			}
		case ZoneCheckpoint:
			if z.Window < 0 {
				errs = append(errs, fmt.Errorf("zone %d (%s): window must not be negative", i, z.Name))
			}
			if len(z.Points) > len(l.Slots) {
				errs = append(errs, fmt.Errorf("zone %d (%s): %d targets for %d slots", i, z.Name, len(z.Points), len(l.Slots)))
			}
		default:
			errs = append(errs, fmt.Errorf("zone %d (%s): unknown kind %q", i, z.Name, z.Kind))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid level %q: %w", l.Name, errors.Join(errs...))
	}
	return nil
}

func (l *Level) validateTuning() []error {
	var errs []error
	nonNegative := func(key string, v *float64) {
		if v != nil && *v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", key))
		}
	}
	nonNegative("movement.move_speed", l.Movement.MoveSpeed)
	nonNegative("movement.jump_impulse", l.Movement.JumpImpulse)
	nonNegative("movement.ground_check_distance", l.Movement.GroundCheckDistance)
	nonNegative("sniper.max_distance", l.Sniper.MaxDistance)
	nonNegative("sniper.cooldown", l.Sniper.Cooldown)
	if v := l.Movement.AirControl; v != nil && (*v < 0 || *v > 1) {
		errs = append(errs, errors.New("movement.air_control must be in 0..1"))
	}
	if lo, hi := l.Sniper.MinPitch, l.Sniper.MaxPitch; lo != nil && hi != nil && *lo > *hi {
		errs = append(errs, errors.New("sniper.min_pitch must not exceed sniper.max_pitch"))
	}
	return errs
}

const DefaultJoinLockDelay = 5.0

// MatchConfig builds the rules configuration for one arena run. A positive
// joinLockDelay overrides the level's own delay.
func (l *Level) MatchConfig(joinLockDelay float64) match.Config {
	slots := make([]match.Transform, len(l.Slots))
	for i, s := range l.Slots {
		slots[i] = s.Transform()
	}
	colors := make([]match.Color, 0, len(l.Colors))
	for _, c := range l.Colors {
		col, _ := ParseColor(c)
		colors = append(colors, col)
	}
	if joinLockDelay <= 0 {
		joinLockDelay = l.JoinLockDelay
	}
	if joinLockDelay <= 0 {
		joinLockDelay = DefaultJoinLockDelay
	}

	movement := match.DefaultMovementTuning()
	setIf(&movement.MoveSpeed, l.Movement.MoveSpeed)
	setIf(&movement.JumpImpulse, l.Movement.JumpImpulse)
	setIf(&movement.AirControl, l.Movement.AirControl)
	setIf(&movement.GroundCheckDistance, l.Movement.GroundCheckDistance)
	setIf(&movement.TurnRate, l.Movement.TurnRate)

	camera := match.DefaultCameraTuning()
	if l.Camera.Offset != nil {
		camera.Offset = l.Camera.Offset.V3()
	}
	setIf(&camera.PositionSmoothTime, l.Camera.PositionSmoothTime)
	setIf(&camera.RotationRate, l.Camera.RotationRate)
	if l.Camera.LookAtTarget != nil {
		camera.LookAtTarget = *l.Camera.LookAtTarget
	}
	setIf(&camera.MinFOV, l.Camera.MinFOV)
	setIf(&camera.MaxFOV, l.Camera.MaxFOV)
	setIf(&camera.SpreadMin, l.Camera.SpreadMin)
	setIf(&camera.SpreadMax, l.Camera.SpreadMax)
	setIf(&camera.FOVSmoothTime, l.Camera.FOVSmoothTime)

	sniper := match.DefaultSniperTuning()
	setIf(&sniper.Sensitivity, l.Sniper.Sensitivity)
	setIf(&sniper.MinPitch, l.Sniper.MinPitch)
	setIf(&sniper.MaxPitch, l.Sniper.MaxPitch)
	setIf(&sniper.MaxDistance, l.Sniper.MaxDistance)
	setIf(&sniper.Cooldown, l.Sniper.Cooldown)
	sniper.HoldToFire = l.Sniper.HoldToFire

	return match.Config{
		Slots:         slots,
		Colors:        colors,
		JoinLockDelay: joinLockDelay,
		RestartScene:  l.RestartScene,
		Movement:      movement,
		Camera:        camera,
		Sniper:        sniper,
	}
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (match.Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return match.Color{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return match.Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	ch := func(shift uint) float64 { return float64((v>>shift)&0xff) / 255 }
	return match.Color{R: ch(24), G: ch(16), B: ch(8), A: ch(0)}, nil
}

// Hex formats c as #rrggbb for clients.
func Hex(c match.Color) string {
	b := func(f float64) int { return int(vmath.Clamp01(f)*255 + 0.5) }
	return fmt.Sprintf("#%02x%02x%02x", b(c.R), b(c.G), b(c.B))
}
