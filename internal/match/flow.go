package match

import "log/slog"

type Outcome uint8

const (
	InProgress Outcome = iota
	SniperWon
	RunnersWon
)

func (o Outcome) String() string {
	switch o {
	case SniperWon:
		return "sniper_won"
	case RunnersWon:
		return "runners_won"
	default:
		return "in_progress"
	}
}

// Names of the outcome displays. Display 1 is the sniper's screen, display 2
// the runners'.
const (
	DisplaySniperWins1 = "d1_sniper_wins"
	DisplayRunnersWin1 = "d1_runners_win"
	DisplaySniperWins2 = "d2_sniper_wins"
	DisplayRunnersWin2 = "d2_runners_win"
)

var outcomeDisplays = []string{
	DisplaySniperWins1,
	DisplayRunnersWin1,
	DisplaySniperWins2,
	DisplayRunnersWin2,
}

// Flow owns the match outcome latch. The first declared winner stands.
type Flow struct {
	outcome      Outcome
	display      Display
	scenes       SceneLoader
	restartScene int
	logger       *slog.Logger

	// OnFinish runs once, when the outcome becomes terminal.
	OnFinish func(Outcome)
}

func NewFlow(display Display, scenes SceneLoader, restartScene int, logger *slog.Logger) *Flow {
	f := &Flow{
		display:      display,
		scenes:       scenes,
		restartScene: restartScene,
		logger:       logger,
	}
	f.setAllOff()
	return f
}

func (f *Flow) Outcome() Outcome { return f.outcome }
func (f *Flow) Finished() bool   { return f.outcome != InProgress }

func (f *Flow) DeclareSniperWon() {
	f.finish(SniperWon, DisplaySniperWins1, DisplaySniperWins2)
}

func (f *Flow) DeclareRunnersWon() {
	f.finish(RunnersWon, DisplayRunnersWin1, DisplayRunnersWin2)
}

func (f *Flow) finish(o Outcome, show ...string) {
	if f.Finished() {
		return
	}
	f.outcome = o

	f.setAllOff()
	for _, name := range show {
		f.setUI(name, true)
	}
	f.logger.Info("match finished", "outcome", o.String())

	if f.OnFinish != nil {
		f.OnFinish(o)
	}
}

// CheckRunnersEliminated declares the sniper the winner when runners exist
// and none is alive. It waits until joining is locked.
func (f *Flow) CheckRunnersEliminated(roster *Roster, gate *JoinGate) {
	if f.Finished() || gate == nil || gate.Enabled() {
		return
	}
	runners := roster.Runners()
	if len(runners) == 0 {
		return
	}
	for _, r := range runners {
		if r.Alive() {
			return
		}
	}
	f.DeclareSniperWon()
}

// Update reloads the restart scene on any confirm input after the match ended.
func (f *Flow) Update(confirm bool) {
	if !f.Finished() || !confirm {
		return
	}
	if f.scenes == nil {
		f.logger.Warn("no scene loader, cannot restart")
		return
	}
	f.scenes.LoadScene(f.restartScene)
}

func (f *Flow) setAllOff() {
	for _, name := range outcomeDisplays {
		f.setUI(name, false)
	}
}

func (f *Flow) setUI(name string, on bool) {
	if f.display != nil {
		f.display.SetVisible(name, on)
	}
}
