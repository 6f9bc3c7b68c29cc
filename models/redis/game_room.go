package redis

// GamePhase is the room's current stage in the fixed state machine.
type GamePhase string

const (
	PhaseWaiting       GamePhase = "waiting"
	PhaseQuestion      GamePhase = "question"
	PhaseVoting        GamePhase = "voting"
	PhaseVoteSelection GamePhase = "vote_selection"
	PhaseResults       GamePhase = "results"
)

// Player roles for a round
const (
	RoleNormal   = "normal"
	RoleImposter = "imposter"
)

// RoomSettings is chosen by the host while the room is still waiting.
type RoomSettings struct {
	MaxPlayers  int    `json:"max_players"`
	TotalRounds int    `json:"total_rounds"`
	GameMode    string `json:"game_mode"` // "normal" or "mayhem"
}

// Player is one seat in a room. The socket id is only set while the
// player is reachable; a disconnected player keeps the seat until the
// grace window runs out.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Avatar         string `json:"avatar"`
	SocketID       string `json:"socket_id,omitempty"`
	Disconnected   bool   `json:"disconnected,omitempty"`
	DisconnectedAt int64  `json:"disconnected_at,omitempty"` // epoch millis
	// Pre-disconnect UI snapshot, restored on rejoin
	HadSubmitted bool `json:"had_submitted,omitempty"`
	WasReady     bool `json:"was_ready,omitempty"`
}

// GameResults is the payload shown on the results screen.
type GameResults struct {
	FinalRound   int            `json:"final_round"`
	GameComplete bool           `json:"game_complete"`
	Reason       string         `json:"reason,omitempty"`
	TotalScores  map[string]int `json:"total_scores"`
}

// GameRoom is the aggregate snapshot persisted as one Redis value.
// Key format: "room:{id}"
type GameRoom struct {
	ID          string       `json:"id"`
	Phase       GamePhase    `json:"phase"`
	Players     []*Player    `json:"players"`
	HostID      string       `json:"host_id"`
	LobbyEvents []string     `json:"lobby_events"`
	Settings    RoomSettings `json:"settings"`
	Language    string       `json:"language"`

	CurrentRound int `json:"current_round"`
	TotalRounds  int `json:"total_rounds"`

	// Round-scoped question data
	UsedQuestionIDs  []int             `json:"used_question_ids"`
	MainQuestion     string            `json:"main_question"`
	ImposterQuestion string            `json:"imposter_question"`
	ImposterIDs      []string          `json:"imposter_ids"`
	Roles            map[string]string `json:"roles"`     // player id -> role
	Questions        map[string]string `json:"questions"` // player id -> private prompt

	// Round-scoped player input
	Answers     map[string]string   `json:"answers"`       // player id -> answer
	Votes       map[string]string   `json:"votes"`         // legacy single-accusation flow
	LiarVotes   map[string][]string `json:"liar_votes"`    // accused id -> accuser ids
	ReadyToVote []string            `json:"ready_to_vote"` // done-discussing signals

	TotalScores map[string]int `json:"total_scores"`
	Results     *GameResults   `json:"results,omitempty"`

	// Phase clocks, epoch millis. PhaseDeadline is when the active
	// phase's timer fires.
	QuestionPhaseStart      int64 `json:"question_phase_start_timestamp"`
	VotingPhaseStart        int64 `json:"voting_phase_start_timestamp"`
	VoteSelectionPhaseStart int64 `json:"vote_selection_start_timestamp"`
	PhaseDeadline           int64 `json:"phase_deadline"`
}

// FindPlayer returns the seat with the given id, or nil.
func (r *GameRoom) FindPlayer(playerID string) *Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// FindPlayerBySocket returns the seat currently bound to a socket id, or nil.
func (r *GameRoom) FindPlayerBySocket(socketID string) *Player {
	for _, p := range r.Players {
		if p.SocketID == socketID {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the non-disconnected seats in join order.
func (r *GameRoom) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if !p.Disconnected {
			active = append(active, p)
		}
	}
	return active
}

// PlayerName resolves a display name, falling back like the lobby log does.
func (r *GameRoom) PlayerName(playerID string) string {
	if p := r.FindPlayer(playerID); p != nil {
		return p.Name
	}
	return "Someone"
}

// IsImposter reports whether the player drew the imposter role this round.
func (r *GameRoom) IsImposter(playerID string) bool {
	for _, id := range r.ImposterIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// AppendLobbyEvent records a line in the room's event log, dropping the
// oldest entries past the retention cap.
func (r *GameRoom) AppendLobbyEvent(maxEvents int, event string) {
	r.LobbyEvents = append(r.LobbyEvents, event)
	if maxEvents > 0 && len(r.LobbyEvents) > maxEvents {
		r.LobbyEvents = r.LobbyEvents[len(r.LobbyEvents)-maxEvents:]
	}
}
