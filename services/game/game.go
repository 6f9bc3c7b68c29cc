package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/questions"

	"github.com/google/uuid"
)

// This package holds the room state machine as pure mutations over a
// *GameRoom snapshot. Handlers load the snapshot from Redis under the
// room lock, call into here, persist, and broadcast after unlock.
// Nothing in this package performs I/O.

// SanitizeString trims user input and caps it at 100 bytes, backing off
// to the previous rune boundary so the result is always valid UTF-8.
func SanitizeString(input string) string {
	const maxLength = 100
	s := strings.TrimSpace(input)
	if len(s) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

func nowMillis(now time.Time) int64 {
	return now.UnixMilli()
}

// DefaultSettings returns the room settings used until the host changes them.
func DefaultSettings() redis_models.RoomSettings {
	return redis_models.RoomSettings{
		MaxPlayers:  game_constants.DefaultMaxPlayers,
		TotalRounds: game_constants.DefaultTotalRounds,
		GameMode:    game_constants.GameModeNormal,
	}
}

// NewRoom creates a waiting room with its creator seated as host.
func NewRoom(roomID, language, hostName, avatar, socketID string) *redis_models.GameRoom {
	host := &redis_models.Player{
		ID:       uuid.NewString(),
		Name:     hostName,
		Avatar:   avatar,
		SocketID: socketID,
	}
	room := &redis_models.GameRoom{
		ID:           roomID,
		Phase:        redis_models.PhaseWaiting,
		Players:      []*redis_models.Player{host},
		HostID:       host.ID,
		Settings:     DefaultSettings(),
		Language:     language,
		CurrentRound: 1,
		TotalRounds:  game_constants.DefaultTotalRounds,
		Roles:        map[string]string{},
		Questions:    map[string]string{},
		Answers:      map[string]string{},
		Votes:        map[string]string{},
		LiarVotes:    map[string][]string{},
		ReadyToVote:  []string{},
		TotalScores:  map[string]int{},
	}
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s created the room and is the host.", hostName))
	return room
}

// AddPlayer seats a new player in a waiting room.
func AddPlayer(room *redis_models.GameRoom, name, avatar, socketID string) (*redis_models.Player, error) {
	if room.Phase != redis_models.PhaseWaiting {
		return nil, ErrGameInProgress
	}
	if len(room.ActivePlayers()) >= room.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range room.Players {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}

	player := &redis_models.Player{
		ID:       uuid.NewString(),
		Name:     name,
		Avatar:   avatar,
		SocketID: socketID,
	}
	room.Players = append(room.Players, player)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s has joined the game.", name))
	return player, nil
}

// RemovePlayer unseats a player (voluntary leave or host kick) and
// reassigns the host seat if needed. The caller decides what to do with
// an emptied room.
func RemovePlayer(room *redis_models.GameRoom, playerID string) (*redis_models.Player, error) {
	removed := room.FindPlayer(playerID)
	if removed == nil {
		return nil, ErrPlayerNotFound
	}

	players := room.Players[:0]
	for _, p := range room.Players {
		if p.ID != playerID {
			players = append(players, p)
		}
	}
	room.Players = players
	clearPlayerRoundData(room, playerID, true)

	if room.HostID == playerID {
		reassignHost(room)
	}
	return removed, nil
}

func reassignHost(room *redis_models.GameRoom) {
	active := room.ActivePlayers()
	if len(active) == 0 {
		return
	}
	room.HostID = active[0].ID
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s is the new host.", active[0].Name))
}

// UpdateSettings applies a host's settings change while clamping values
// the state machine depends on.
func UpdateSettings(room *redis_models.GameRoom, requesterID string, settings redis_models.RoomSettings) error {
	if room.HostID != requesterID {
		return ErrNotHost
	}
	if settings.MaxPlayers < game_constants.MinPlayersToStart {
		settings.MaxPlayers = game_constants.MinPlayersToStart
	}
	if settings.TotalRounds < 1 {
		settings.TotalRounds = game_constants.DefaultTotalRounds
	}
	if settings.GameMode != game_constants.GameModeMayhem {
		settings.GameMode = game_constants.GameModeNormal
	}
	room.Settings = settings
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "Host updated the game settings.")
	return nil
}

// StartGame moves a waiting room into its first question phase.
func StartGame(room *redis_models.GameRoom, requesterID string, pair questions.Pair,
	rng *rand.Rand, now time.Time) error {
	if room.Phase != redis_models.PhaseWaiting {
		return ErrWrongPhase
	}
	if room.HostID != requesterID {
		return ErrNotHost
	}
	if len(room.ActivePlayers()) < game_constants.MinPlayersToStart {
		return ErrNotEnoughPlayers
	}

	room.CurrentRound = 1
	room.TotalRounds = room.Settings.TotalRounds
	room.TotalScores = map[string]int{}
	room.Results = nil

	beginRound(room, pair, rng, now)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "The game has started!")
	return nil
}

// beginRound assigns roles and private questions for the round and enters
// the question phase. Imposters are drawn from active players only, but
// every seat (disconnected included) gets a role and question so a
// reconnecting player lands correctly.
func beginRound(room *redis_models.GameRoom, pair questions.Pair, rng *rand.Rand, now time.Time) {
	active := room.ActivePlayers()

	count := ImposterCount(room.Settings.GameMode, len(active), rng)
	room.ImposterIDs = sampleImposters(active, count, rng)

	room.MainQuestion = pair.Prompt
	room.ImposterQuestion = pair.ImposterPrompt
	room.UsedQuestionIDs = append(room.UsedQuestionIDs, pair.ID)

	room.Roles = map[string]string{}
	room.Questions = map[string]string{}
	for _, p := range room.Players {
		if room.IsImposter(p.ID) {
			room.Roles[p.ID] = redis_models.RoleImposter
			room.Questions[p.ID] = pair.ImposterPrompt
		} else {
			room.Roles[p.ID] = redis_models.RoleNormal
			room.Questions[p.ID] = pair.Prompt
		}
	}

	room.Answers = map[string]string{}
	room.Votes = map[string]string{}
	room.LiarVotes = map[string][]string{}
	room.ReadyToVote = []string{}

	room.Phase = redis_models.PhaseQuestion
	room.QuestionPhaseStart = nowMillis(now.Add(-game_constants.QuestionPhaseBackdate))
	room.VotingPhaseStart = 0
	room.VoteSelectionPhaseStart = 0
	room.PhaseDeadline = nowMillis(now.Add(game_constants.QUESTION_TIMEOUT))
}

func sampleImposters(active []*redis_models.Player, count int, rng *rand.Rand) []string {
	if count <= 0 {
		return []string{}
	}
	if count > len(active) {
		count = len(active)
	}
	ids := make([]string, 0, count)
	for _, i := range rng.Perm(len(active))[:count] {
		ids = append(ids, active[i].ID)
	}
	return ids
}

// SubmitAnswer records an answer during the question phase. Returns true
// when the submission completed the phase and the room moved to voting.
func SubmitAnswer(room *redis_models.GameRoom, playerID, answer string, now time.Time) (bool, error) {
	if room.Phase != redis_models.PhaseQuestion {
		return false, ErrWrongPhase
	}
	if room.FindPlayer(playerID) == nil {
		return false, ErrPlayerNotFound
	}

	_, resubmission := room.Answers[playerID]
	room.Answers[playerID] = answer

	name := room.PlayerName(playerID)
	if resubmission {
		room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
			fmt.Sprintf("%s updated their answer.", name))
	} else {
		room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
			fmt.Sprintf("%s submitted their answer.", name))
	}

	return maybeAdvanceFromQuestion(room, now), nil
}

// RemoveAnswer withdraws an answer so the player can edit it. Only valid
// while answers are still hidden (question phase).
func RemoveAnswer(room *redis_models.GameRoom, playerID string) error {
	if room.Phase != redis_models.PhaseQuestion {
		return ErrWrongPhase
	}
	if _, ok := room.Answers[playerID]; !ok {
		return nil // nothing to withdraw, not an error
	}
	delete(room.Answers, playerID)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s is editing their answer.", room.PlayerName(playerID)))
	return nil
}

// SubmitVote records a legacy single accusation during the voting phase.
// A second submission is a silent no-op.
func SubmitVote(room *redis_models.GameRoom, voterID, votedForID string) error {
	if room.Phase != redis_models.PhaseVoting {
		return ErrWrongPhase
	}
	if _, voted := room.Votes[voterID]; voted {
		return nil
	}
	room.Votes[voterID] = votedForID
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s has cast their vote.", room.PlayerName(voterID)))
	return nil
}

// MarkReadyToVote records a done-discussing signal. Returns true when the
// signal completed the phase and the room moved to vote_selection.
func MarkReadyToVote(room *redis_models.GameRoom, playerID string, now time.Time) (bool, error) {
	if room.Phase != redis_models.PhaseVoting {
		return false, ErrWrongPhase
	}
	if room.FindPlayer(playerID) == nil {
		return false, ErrPlayerNotFound
	}
	for _, id := range room.ReadyToVote {
		if id == playerID {
			return false, nil // duplicate signal
		}
	}
	room.ReadyToVote = append(room.ReadyToVote, playerID)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s is ready to vote.", room.PlayerName(playerID)))

	return maybeAdvanceFromVoting(room, now), nil
}

// CastLiarVote records an accusation during vote_selection. In normal mode
// a player holds a single accusation and a new cast replaces the previous
// one; mayhem mode allows stacking multiple casts.
func CastLiarVote(room *redis_models.GameRoom, voterID, targetID string) error {
	if room.Phase != redis_models.PhaseVoteSelection {
		return ErrWrongPhase
	}
	if room.FindPlayer(voterID) == nil || room.FindPlayer(targetID) == nil {
		return ErrPlayerNotFound
	}

	if room.Settings.GameMode != game_constants.GameModeMayhem {
		for target, voters := range room.LiarVotes {
			room.LiarVotes[target] = removeString(voters, voterID)
		}
	}
	room.LiarVotes[targetID] = append(room.LiarVotes[targetID], voterID)

	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("%s voted for %s.", room.PlayerName(voterID), room.PlayerName(targetID)))
	return nil
}

// AdvanceToVoting moves question -> voting. Safe to call from a stale
// timer: returns false without touching the room when the phase moved on.
func AdvanceToVoting(room *redis_models.GameRoom, now time.Time) bool {
	if room.Phase != redis_models.PhaseQuestion {
		return false
	}
	room.Phase = redis_models.PhaseVoting
	room.VotingPhaseStart = nowMillis(now)
	room.PhaseDeadline = nowMillis(now.Add(game_constants.VOTING_TIMEOUT))
	room.ReadyToVote = []string{}
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "All answers are in! Time to vote.")
	return true
}

// AdvanceToVoteSelection moves voting -> vote_selection with the same
// stale-timer guard.
func AdvanceToVoteSelection(room *redis_models.GameRoom, now time.Time) bool {
	if room.Phase != redis_models.PhaseVoting {
		return false
	}
	room.Phase = redis_models.PhaseVoteSelection
	room.VoteSelectionPhaseStart = nowMillis(now)
	room.PhaseDeadline = nowMillis(now.Add(game_constants.VOTE_SELECTION_TIMEOUT))
	room.ReadyToVote = []string{}
	room.LiarVotes = map[string][]string{}
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "Time to vote for the imposter!")
	return true
}

// ResolveRound scores the finished round and either starts the next round
// with the provided question pair or moves the room to results. Returns
// (advanced, finished): advanced is false when the call was stale.
func ResolveRound(room *redis_models.GameRoom, pair questions.Pair,
	rng *rand.Rand, now time.Time) (advanced bool, finished bool) {
	if room.Phase != redis_models.PhaseVoteSelection {
		return false, false
	}

	for playerID, delta := range RoundScores(room) {
		room.TotalScores[playerID] += delta
	}

	activeCount := len(room.ActivePlayers())
	if room.CurrentRound >= room.TotalRounds || activeCount < game_constants.MinPlayersToStart {
		results := &redis_models.GameResults{
			FinalRound:   room.CurrentRound,
			GameComplete: room.CurrentRound >= room.TotalRounds,
			TotalScores:  room.TotalScores,
		}
		if !results.GameComplete {
			results.Reason = "Not enough players to continue."
		}
		room.Results = results
		room.Phase = redis_models.PhaseResults
		room.PhaseDeadline = 0
		room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "The game is over!")
		return true, true
	}

	room.CurrentRound++
	beginRound(room, pair, rng, now)
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents,
		fmt.Sprintf("Round %d has started!", room.CurrentRound))
	return true, false
}

// ResetForNewGame returns a finished room to the waiting phase, keeping
// the roster and host but clearing every game-scoped field.
func ResetForNewGame(room *redis_models.GameRoom, requesterID string) error {
	if room.Phase != redis_models.PhaseResults {
		return ErrWrongPhase
	}
	if room.HostID != requesterID {
		return ErrNotHost
	}

	room.Phase = redis_models.PhaseWaiting
	room.CurrentRound = 1
	room.MainQuestion = ""
	room.ImposterQuestion = ""
	room.ImposterIDs = nil
	room.Roles = map[string]string{}
	room.Questions = map[string]string{}
	room.Answers = map[string]string{}
	room.Votes = map[string]string{}
	room.LiarVotes = map[string][]string{}
	room.ReadyToVote = []string{}
	room.TotalScores = map[string]int{}
	room.Results = nil
	room.QuestionPhaseStart = 0
	room.VotingPhaseStart = 0
	room.VoteSelectionPhaseStart = 0
	room.PhaseDeadline = 0
	room.AppendLobbyEvent(game_constants.MaxLobbyEvents, "A new game is starting!")
	return nil
}

// RecheckPhaseCompletion re-evaluates the current collecting phase after
// the active roster shrank: a smaller denominator may already be satisfied
// by the inputs on hand. Returns true when the room advanced.
func RecheckPhaseCompletion(room *redis_models.GameRoom, now time.Time) bool {
	switch room.Phase {
	case redis_models.PhaseQuestion:
		return maybeAdvanceFromQuestion(room, now)
	case redis_models.PhaseVoting:
		return maybeAdvanceFromVoting(room, now)
	}
	return false
}

// maybeAdvanceFromQuestion transitions to voting once every active player
// has an answer in.
func maybeAdvanceFromQuestion(room *redis_models.GameRoom, now time.Time) bool {
	active := room.ActivePlayers()
	if len(active) == 0 {
		return false
	}
	for _, p := range active {
		if _, ok := room.Answers[p.ID]; !ok {
			return false
		}
	}
	return AdvanceToVoting(room, now)
}

// maybeAdvanceFromVoting transitions to vote_selection once every active
// player has signaled ready.
func maybeAdvanceFromVoting(room *redis_models.GameRoom, now time.Time) bool {
	active := room.ActivePlayers()
	if len(active) == 0 {
		return false
	}
	ready := make(map[string]bool, len(room.ReadyToVote))
	for _, id := range room.ReadyToVote {
		ready[id] = true
	}
	for _, p := range active {
		if !ready[p.ID] {
			return false
		}
	}
	return AdvanceToVoteSelection(room, now)
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
