package match

// Clock is simulation time in seconds, advanced by the variable tick.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64       { return c.now }
func (c *Clock) Advance(dt float64) { c.now += dt }

// Countdown is a one-shot polling timer. It is not cancellable.
type Countdown struct {
	remaining float64
	active    bool
	done      func()
}

func (c *Countdown) Active() bool { return c != nil && c.active }

func (c *Countdown) Remaining() float64 {
	if c == nil || !c.active {
		return 0
	}
	return c.remaining
}

// Timers holds running countdowns and advances them once per frame.
type Timers struct {
	running []*Countdown
}

// Start begins a countdown that calls done once after d seconds.
func (t *Timers) Start(d float64, done func()) *Countdown {
	c := &Countdown{remaining: d, active: true, done: done}
	t.running = append(t.running, c)
	return c
}

func (t *Timers) Tick(dt float64) {
	if len(t.running) == 0 {
		return
	}
	var fired []*Countdown
	kept := t.running[:0]
	for _, c := range t.running {
		c.remaining -= dt
		if c.remaining > 0 {
			kept = append(kept, c)
			continue
		}
		c.remaining = 0
		c.active = false
		fired = append(fired, c)
	}
	t.running = kept

	// Callbacks may start new countdowns.
	for _, c := range fired {
		if c.done != nil {
			c.done()
		}
	}
}

func (t *Timers) Len() int { return len(t.running) }
