package protocol

// Messages sent by the server.

type Welcome struct {
	ClientID string `json:"clientId"`
	Room     string `json:"room"`
	TickHz   int    `json:"tickHz"`
	FrameHz  int    `json:"frameHz"`
	Scene    int    `json:"scene"`
	Level    string `json:"level"`
	Music    string `json:"music,omitempty"`
}

type Joined struct {
	PlayerID string `json:"playerId"`
	Number   int    `json:"number"`
	Role     string `json:"role"`
	Color    string `json:"color"`
}

type Rejected struct {
	Reason string `json:"reason"`
}

type Error struct {
	Message string `json:"message"`
}

type State struct {
	Frame     int              `json:"frame"`
	Scene     int              `json:"scene"`
	Outcome   string           `json:"outcome"`
	JoinOpen  bool             `json:"joinOpen"`
	JoinLock  float64          `json:"joinLock,omitempty"`
	Players   []PlayerSnapshot `json:"players"`
	RunnerCam CameraSnapshot   `json:"runnerCam"`
	SniperCam CameraSnapshot   `json:"sniperCam"`
	Displays  []string         `json:"displays,omitempty"`
}

type PlayerSnapshot struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Number   int        `json:"number"`
	Role     string     `json:"role"`
	Color    string     `json:"color"`
	Alive    bool       `json:"alive"`
	Visible  bool       `json:"visible"`
	Pos      [3]float64 `json:"pos"`
	Rot      [4]float64 `json:"rot"`
	Moving   bool       `json:"moving,omitempty"`
	Grounded bool       `json:"grounded,omitempty"`
}

type CameraSnapshot struct {
	Pos [3]float64 `json:"pos"`
	Rot [4]float64 `json:"rot"`
	FOV float64    `json:"fov"`
}
