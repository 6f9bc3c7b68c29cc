package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
	"github.com/StylizedAce/DaiMaouLiarGame/services/questions"

	"github.com/stretchr/testify/assert"
)

var testPair = questions.Pair{
	ID:             7,
	Prompt:         "What is your favorite breakfast?",
	ImposterPrompt: "What is your favorite dinner?",
}

var nextPair = questions.Pair{
	ID:             8,
	Prompt:         "Name a good pet.",
	ImposterPrompt: "Name a good wild animal.",
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

// makeRoom builds a waiting room with n seated players. Player ids are
// p0..p(n-1) with p0 as host, so tests can address seats directly.
func makeRoom(n int) *redis_models.GameRoom {
	room := NewRoom("room1", "en", "Alice", "1", "sock-0")
	room.Players[0].ID = "p0"
	room.HostID = "p0"
	names := []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi"}
	for i := 1; i < n; i++ {
		p, _ := AddPlayer(room, names[i], "1", fmt.Sprintf("sock-%d", i))
		p.ID = fmt.Sprintf("p%d", i)
	}
	return room
}

// makeStartedRoom starts a game for n players and returns it in the
// question phase.
func makeStartedRoom(t *testing.T, n int) *redis_models.GameRoom {
	room := makeRoom(n)
	err := StartGame(room, "p0", testPair, testRng(), time.Now())
	assert.NoError(t, err)
	return room
}

func TestSanitizeStringTruncatesOnRuneBoundary(t *testing.T) {
	assert.Equal(t, "Alice", SanitizeString("  Alice  "))

	long := strings.Repeat("a", 99) + "ü" // the two-byte rune straddles byte 100
	got := SanitizeString(long)
	assert.Equal(t, strings.Repeat("a", 99), got)
	assert.True(t, utf8.ValidString(got))

	emoji := strings.Repeat("🦊", 30) // 120 bytes of four-byte runes
	got = SanitizeString(emoji)
	assert.LessOrEqual(t, len(got), 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("🦊", 25), got)
}

func TestNewRoomDefaults(t *testing.T) {
	room := NewRoom("room1", "en", "Alice", "3", "sock-0")

	assert.Equal(t, redis_models.PhaseWaiting, room.Phase)
	assert.Len(t, room.Players, 1)
	assert.Equal(t, room.Players[0].ID, room.HostID)
	assert.Equal(t, game_constants.DefaultMaxPlayers, room.Settings.MaxPlayers)
	assert.Equal(t, game_constants.DefaultTotalRounds, room.Settings.TotalRounds)
	assert.Equal(t, game_constants.GameModeNormal, room.Settings.GameMode)
	assert.Equal(t, 1, room.CurrentRound)
	assert.Contains(t, room.LobbyEvents, "Alice created the room and is the host.")
}

func TestAddPlayerRejectsDuplicateName(t *testing.T) {
	room := makeRoom(2)

	_, err := AddPlayer(room, "Bob", "2", "sock-x")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestAddPlayerRejectsFullRoom(t *testing.T) {
	room := makeRoom(2)
	room.Settings.MaxPlayers = 2

	_, err := AddPlayer(room, "Carol", "2", "sock-x")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddPlayerRejectsRunningGame(t *testing.T) {
	room := makeStartedRoom(t, 3)

	_, err := AddPlayer(room, "Zoe", "2", "sock-x")
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestRemovePlayerReassignsHost(t *testing.T) {
	room := makeRoom(3)

	_, err := RemovePlayer(room, "p0")
	assert.NoError(t, err)
	assert.Equal(t, "p1", room.HostID)
	assert.Contains(t, room.LobbyEvents, "Bob is the new host.")
}

func TestUpdateSettingsOnlyHost(t *testing.T) {
	room := makeRoom(2)

	err := UpdateSettings(room, "p1", redis_models.RoomSettings{MaxPlayers: 4, TotalRounds: 3, GameMode: "normal"})
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestUpdateSettingsClampsValues(t *testing.T) {
	room := makeRoom(2)

	err := UpdateSettings(room, "p0", redis_models.RoomSettings{MaxPlayers: 0, TotalRounds: 0, GameMode: "chaotic"})
	assert.NoError(t, err)
	assert.Equal(t, game_constants.MinPlayersToStart, room.Settings.MaxPlayers)
	assert.Equal(t, game_constants.DefaultTotalRounds, room.Settings.TotalRounds)
	assert.Equal(t, game_constants.GameModeNormal, room.Settings.GameMode)
}

func TestStartGameChecks(t *testing.T) {
	room := makeRoom(1)
	err := StartGame(room, "p0", testPair, testRng(), time.Now())
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	room = makeRoom(3)
	err = StartGame(room, "p1", testPair, testRng(), time.Now())
	assert.ErrorIs(t, err, ErrNotHost)

	room = makeStartedRoom(t, 3)
	err = StartGame(room, "p0", testPair, testRng(), time.Now())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestStartGameAssignsRolesAndClocks(t *testing.T) {
	now := time.Now()
	room := makeRoom(4)
	err := StartGame(room, "p0", testPair, testRng(), now)
	assert.NoError(t, err)

	assert.Equal(t, redis_models.PhaseQuestion, room.Phase)
	assert.Len(t, room.ImposterIDs, 1, "normal mode draws exactly one imposter")
	assert.Contains(t, room.UsedQuestionIDs, testPair.ID)

	for _, p := range room.Players {
		role := room.Roles[p.ID]
		if room.IsImposter(p.ID) {
			assert.Equal(t, redis_models.RoleImposter, role)
			assert.Equal(t, testPair.ImposterPrompt, room.Questions[p.ID])
		} else {
			assert.Equal(t, redis_models.RoleNormal, role)
			assert.Equal(t, testPair.Prompt, room.Questions[p.ID])
		}
	}

	// The phase-start clock is backdated so late-loading clients do not
	// see a countdown longer than the real one.
	backdated := now.Add(-game_constants.QuestionPhaseBackdate).UnixMilli()
	assert.Equal(t, backdated, room.QuestionPhaseStart)
	assert.Equal(t, now.Add(game_constants.QUESTION_TIMEOUT).UnixMilli(), room.PhaseDeadline)
	assert.Contains(t, room.LobbyEvents, "The game has started!")
}

func TestSubmitAnswerCollectsAndAdvances(t *testing.T) {
	room := makeStartedRoom(t, 3)
	now := time.Now()

	transitioned, err := SubmitAnswer(room, "p0", "pancakes", now)
	assert.NoError(t, err)
	assert.False(t, transitioned)

	transitioned, err = SubmitAnswer(room, "p1", "toast", now)
	assert.NoError(t, err)
	assert.False(t, transitioned)

	transitioned, err = SubmitAnswer(room, "p2", "eggs", now)
	assert.NoError(t, err)
	assert.True(t, transitioned, "last answer completes the phase")
	assert.Equal(t, redis_models.PhaseVoting, room.Phase)
	assert.Contains(t, room.LobbyEvents, "All answers are in! Time to vote.")
	assert.Equal(t, now.Add(game_constants.VOTING_TIMEOUT).UnixMilli(), room.PhaseDeadline)
}

func TestSubmitAnswerWrongPhase(t *testing.T) {
	room := makeRoom(2)

	_, err := SubmitAnswer(room, "p0", "pancakes", time.Now())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestResubmissionOverwrites(t *testing.T) {
	room := makeStartedRoom(t, 3)

	_, err := SubmitAnswer(room, "p0", "pancakes", time.Now())
	assert.NoError(t, err)
	_, err = SubmitAnswer(room, "p0", "waffles", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "waffles", room.Answers["p0"])
	assert.Contains(t, room.LobbyEvents, "Alice updated their answer.")
}

func TestRemoveAnswer(t *testing.T) {
	room := makeStartedRoom(t, 3)

	_, err := SubmitAnswer(room, "p0", "pancakes", time.Now())
	assert.NoError(t, err)

	assert.NoError(t, RemoveAnswer(room, "p0"))
	_, ok := room.Answers["p0"]
	assert.False(t, ok)

	// Withdrawing nothing is not an error.
	assert.NoError(t, RemoveAnswer(room, "p0"))
}

func TestMarkReadyToVoteAdvances(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVotingPhase(t, room)
	now := time.Now()

	transitioned, err := MarkReadyToVote(room, "p0", now)
	assert.NoError(t, err)
	assert.False(t, transitioned)

	// Duplicate signals are silent no-ops.
	transitioned, err = MarkReadyToVote(room, "p0", now)
	assert.NoError(t, err)
	assert.False(t, transitioned)
	assert.Len(t, room.ReadyToVote, 1)

	_, err = MarkReadyToVote(room, "p1", now)
	assert.NoError(t, err)
	transitioned, err = MarkReadyToVote(room, "p2", now)
	assert.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, redis_models.PhaseVoteSelection, room.Phase)
	assert.Empty(t, room.ReadyToVote, "ready set is cleared on phase entry")
	assert.Empty(t, room.LiarVotes, "liar votes start the phase empty")
	assert.Contains(t, room.LobbyEvents, "Time to vote for the imposter!")
}

func TestSubmitVoteOncePerVoter(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVotingPhase(t, room)

	assert.NoError(t, SubmitVote(room, "p0", "p1"))
	assert.NoError(t, SubmitVote(room, "p0", "p2"), "second vote is silently ignored")
	assert.Equal(t, "p1", room.Votes["p0"])
}

func TestCastLiarVoteNormalModeReplaces(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVoteSelectionPhase(t, room)

	assert.NoError(t, CastLiarVote(room, "p0", "p1"))
	assert.NoError(t, CastLiarVote(room, "p0", "p2"))

	assert.Empty(t, room.LiarVotes["p1"], "normal mode holds one accusation per voter")
	assert.Equal(t, []string{"p0"}, room.LiarVotes["p2"])
}

func TestCastLiarVoteMayhemStacks(t *testing.T) {
	room := makeStartedRoom(t, 3)
	room.Settings.GameMode = game_constants.GameModeMayhem
	toVoteSelectionPhase(t, room)

	assert.NoError(t, CastLiarVote(room, "p0", "p1"))
	assert.NoError(t, CastLiarVote(room, "p0", "p2"))

	assert.Equal(t, []string{"p0"}, room.LiarVotes["p1"])
	assert.Equal(t, []string{"p0"}, room.LiarVotes["p2"])
}

func TestCastLiarVoteUnknownTarget(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVoteSelectionPhase(t, room)

	assert.ErrorIs(t, CastLiarVote(room, "p0", "ghost"), ErrPlayerNotFound)
}

func TestStaleAdvanceIsNoop(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVotingPhase(t, room)

	events := len(room.LobbyEvents)
	assert.False(t, AdvanceToVoting(room, time.Now()), "already past question phase")
	assert.Equal(t, redis_models.PhaseVoting, room.Phase)
	assert.Len(t, room.LobbyEvents, events, "stale advance leaves no trace")

	toVoteSelectionPhase(t, room)
	assert.False(t, AdvanceToVoteSelection(room, time.Now()))
}

func TestResolveRoundStartsNextRound(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVoteSelectionPhase(t, room)

	advanced, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.True(t, advanced)
	assert.False(t, finished)
	assert.Equal(t, 2, room.CurrentRound)
	assert.Equal(t, redis_models.PhaseQuestion, room.Phase)
	assert.Empty(t, room.Answers)
	assert.Contains(t, room.UsedQuestionIDs, nextPair.ID)
	assert.Contains(t, room.LobbyEvents, "Round 2 has started!")
}

func TestResolveRoundStaleCall(t *testing.T) {
	room := makeStartedRoom(t, 3)

	advanced, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.False(t, advanced)
	assert.False(t, finished)
	assert.Equal(t, 1, room.CurrentRound)
}

func TestResolveRoundFinishesAfterLastRound(t *testing.T) {
	room := makeStartedRoom(t, 3)
	room.TotalRounds = 1
	toVoteSelectionPhase(t, room)

	// The lone imposter dodges every vote this round.
	imposterID := room.ImposterIDs[0]

	advanced, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.True(t, advanced)
	assert.True(t, finished)
	assert.Equal(t, redis_models.PhaseResults, room.Phase)
	assert.NotNil(t, room.Results)
	assert.True(t, room.Results.GameComplete)
	assert.Equal(t, 1, room.Results.FinalRound)
	assert.Equal(t, 2, room.Results.TotalScores[imposterID])
	assert.Contains(t, room.LobbyEvents, "The game is over!")
}

func TestResolveRoundEndsShortWhenRoomEmpties(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVoteSelectionPhase(t, room)
	room.Players[1].Disconnected = true
	room.Players[2].Disconnected = true

	advanced, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.True(t, advanced)
	assert.True(t, finished)
	assert.False(t, room.Results.GameComplete)
	assert.Equal(t, "Not enough players to continue.", room.Results.Reason)
}

func TestResetForNewGame(t *testing.T) {
	room := makeStartedRoom(t, 3)
	room.TotalRounds = 1
	toVoteSelectionPhase(t, room)
	_, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.True(t, finished)

	assert.ErrorIs(t, ResetForNewGame(room, "p1"), ErrNotHost)
	assert.NoError(t, ResetForNewGame(room, "p0"))

	assert.Equal(t, redis_models.PhaseWaiting, room.Phase)
	assert.Len(t, room.Players, 3, "roster survives the reset")
	assert.Equal(t, "p0", room.HostID)
	assert.Equal(t, 1, room.CurrentRound)
	assert.Nil(t, room.Results)
	assert.Empty(t, room.ImposterIDs)
	assert.Empty(t, room.TotalScores)
	assert.Empty(t, room.Answers)
}

func TestResetForNewGameOnlyFromResults(t *testing.T) {
	room := makeStartedRoom(t, 3)

	assert.ErrorIs(t, ResetForNewGame(room, "p0"), ErrWrongPhase)
}

func TestRecheckPhaseCompletionAfterDeparture(t *testing.T) {
	room := makeStartedRoom(t, 3)
	now := time.Now()
	_, err := SubmitAnswer(room, "p0", "pancakes", now)
	assert.NoError(t, err)
	_, err = SubmitAnswer(room, "p1", "toast", now)
	assert.NoError(t, err)

	// The seat without an answer leaves; the survivors are now complete.
	_, err = RemovePlayer(room, "p2")
	assert.NoError(t, err)
	assert.True(t, RecheckPhaseCompletion(room, now))
	assert.Equal(t, redis_models.PhaseVoting, room.Phase)
}

// toVotingPhase answers for every active player.
func toVotingPhase(t *testing.T, room *redis_models.GameRoom) {
	t.Helper()
	now := time.Now()
	for _, p := range room.ActivePlayers() {
		_, err := SubmitAnswer(room, p.ID, "answer from "+p.Name, now)
		assert.NoError(t, err)
	}
	assert.Equal(t, redis_models.PhaseVoting, room.Phase)
}

// toVoteSelectionPhase walks a question-phase room to vote_selection.
func toVoteSelectionPhase(t *testing.T, room *redis_models.GameRoom) {
	t.Helper()
	if room.Phase == redis_models.PhaseQuestion {
		toVotingPhase(t, room)
	}
	now := time.Now()
	for _, p := range room.ActivePlayers() {
		_, err := MarkReadyToVote(room, p.ID, now)
		assert.NoError(t, err)
	}
	assert.Equal(t, redis_models.PhaseVoteSelection, room.Phase)
}
