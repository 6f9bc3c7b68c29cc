package game

import (
	"testing"
	"time"

	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The shared projection is broadcast to the whole room, so anything that
// identifies the imposter must stay out of it until results.
func assertNoSecrets(t *testing.T, state map[string]interface{}) {
	t.Helper()
	assert.NotContains(t, state, "roles")
	assert.NotContains(t, state, "imposterIds")
	assert.NotContains(t, state, "questions")
	assert.NotContains(t, state, "results")
}

func TestRoomStateWaiting(t *testing.T) {
	room := makeRoom(3)
	state := RoomState(room)

	assert.Equal(t, "room1", state["roomId"])
	assert.Equal(t, redis_models.PhaseWaiting, state["phase"])
	assert.Equal(t, "p0", state["hostId"])
	assert.Len(t, state["players"], 3)
	assertNoSecrets(t, state)
	assert.NotContains(t, state, "answers")
}

func TestRoomStateQuestionPhase(t *testing.T) {
	room := makeStartedRoom(t, 3)
	_, err := SubmitAnswer(room, "p0", "pancakes", time.Now())
	assert.NoError(t, err)

	state := RoomState(room)
	assertNoSecrets(t, state)
	assert.Equal(t, 1, state["submittedCount"])
	assert.Equal(t, room.QuestionPhaseStart, state["questionPhaseStartTimestamp"])
	assert.Equal(t, room.PhaseDeadline, state["phaseEndTimestamp"])
	assert.NotContains(t, state, "mainQuestion", "the shared prompt stays hidden while answering")
}

func TestRoomStateHidesDisconnectedAnswersInQuestionPhase(t *testing.T) {
	room := makeStartedRoom(t, 4)
	now := time.Now()
	_, err := SubmitAnswer(room, "p1", "toast", now)
	assert.NoError(t, err)
	_, err = SubmitAnswer(room, "p2", "eggs", now)
	assert.NoError(t, err)
	room.Players[2].Disconnected = true

	state := RoomState(room)
	answers := state["answers"].([]gin.H)
	assert.Len(t, answers, 1)
	assert.Equal(t, "p1", answers[0]["playerId"])
}

func TestRoomStateVotingPhase(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVotingPhase(t, room)

	state := RoomState(room)
	assertNoSecrets(t, state)
	assert.Equal(t, room.MainQuestion, state["mainQuestion"])
	assert.Len(t, state["answers"], 3)
	assert.Equal(t, room.ReadyToVote, state["ready_to_vote"])
	assert.NotContains(t, state, "liarVotes")
}

func TestRoomStateVoteSelectionPhase(t *testing.T) {
	room := makeStartedRoom(t, 3)
	toVoteSelectionPhase(t, room)
	assert.NoError(t, CastLiarVote(room, "p0", "p1"))

	state := RoomState(room)
	assertNoSecrets(t, state)
	assert.Equal(t, room.LiarVotes, state["liarVotes"])
}

func TestRoomStateResultsRevealsEverything(t *testing.T) {
	room := makeStartedRoom(t, 3)
	room.TotalRounds = 1
	toVoteSelectionPhase(t, room)
	_, finished := ResolveRound(room, nextPair, testRng(), time.Now())
	assert.True(t, finished)

	state := RoomState(room)
	assert.Equal(t, room.Results, state["results"])
	assert.Equal(t, room.ImposterIDs, state["imposterIds"])
	assert.Equal(t, room.Roles, state["roles"])
	assert.Equal(t, room.Questions, state["questions"])
}

func TestRoomStateListsOnlyActivePlayers(t *testing.T) {
	room := makeStartedRoom(t, 3)
	room.Players[1].Disconnected = true

	state := RoomState(room)
	assert.Len(t, state["players"], 2)
}

func TestPersonalInfo(t *testing.T) {
	room := makeStartedRoom(t, 3)
	imposterID := room.ImposterIDs[0]

	info := PersonalInfo(room, imposterID)
	assert.Equal(t, redis_models.RoleImposter, info["role"])
	assert.Equal(t, testPair.ImposterPrompt, info["question"])
}
