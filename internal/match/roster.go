package match

// Roster is the explicit registry of live player entities in join order.
type Roster struct {
	players []*Player
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Add(p *Player) {
	r.players = append(r.players, p)
}

// Remove drops the player with the given id. Reports whether it was present.
func (r *Roster) Remove(id string) bool {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Roster) Get(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ByBody finds the player owning a physics body.
func (r *Roster) ByBody(b Body) *Player {
	if b == nil {
		return nil
	}
	for _, p := range r.players {
		if p.body == b {
			return p
		}
	}
	return nil
}

func (r *Roster) All() []*Player {
	return r.players
}

func (r *Roster) Len() int {
	return len(r.players)
}

// Runners returns every runner, alive or dead.
func (r *Roster) Runners() []*Player {
	var out []*Player
	for _, p := range r.players {
		if p.Role() == RoleRunner {
			out = append(out, p)
		}
	}
	return out
}

func (r *Roster) Sniper() *Player {
	for _, p := range r.players {
		if p.Role() == RoleSniper {
			return p
		}
	}
	return nil
}
