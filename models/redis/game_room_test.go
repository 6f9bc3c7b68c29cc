package redis

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivePlayersSkipsDisconnected(t *testing.T) {
	room := &GameRoom{Players: []*Player{
		{ID: "p0"},
		{ID: "p1", Disconnected: true},
		{ID: "p2"},
	}}

	active := room.ActivePlayers()
	assert.Len(t, active, 2)
	assert.Equal(t, "p0", active[0].ID)
	assert.Equal(t, "p2", active[1].ID)
}

func TestPlayerNameFallback(t *testing.T) {
	room := &GameRoom{Players: []*Player{{ID: "p0", Name: "Alice"}}}

	assert.Equal(t, "Alice", room.PlayerName("p0"))
	assert.Equal(t, "Someone", room.PlayerName("ghost"))
}

func TestIsImposter(t *testing.T) {
	room := &GameRoom{ImposterIDs: []string{"p1"}}

	assert.True(t, room.IsImposter("p1"))
	assert.False(t, room.IsImposter("p0"))
}

// The room store persists a room as one JSON value, so every field the
// engine writes has to survive a marshal/unmarshal cycle unchanged.
func TestGameRoomSnapshotRoundTrip(t *testing.T) {
	room := &GameRoom{
		ID:    "room1",
		Phase: PhaseVoteSelection,
		Players: []*Player{
			{ID: "p0", Name: "Alice", Avatar: "3", SocketID: "sock-0"},
			{
				ID:             "p1",
				Name:           "Bob",
				Avatar:         "1",
				Disconnected:   true,
				DisconnectedAt: 1700000000000,
				HadSubmitted:   true,
				WasReady:       true,
			},
			{ID: "p2", Name: "Carol", Avatar: "5", SocketID: "sock-2"},
		},
		HostID:      "p0",
		LobbyEvents: []string{"Alice created the room and is the host.", "Bob has joined the game."},
		Settings: RoomSettings{
			MaxPlayers:  6,
			TotalRounds: 5,
			GameMode:    "mayhem",
		},
		Language:         "en",
		CurrentRound:     3,
		TotalRounds:      5,
		UsedQuestionIDs:  []int{4, 9, 12},
		MainQuestion:     "What is your favorite breakfast?",
		ImposterQuestion: "What is your favorite dinner?",
		ImposterIDs:      []string{"p1"},
		Roles:            map[string]string{"p0": RoleNormal, "p1": RoleImposter, "p2": RoleNormal},
		Questions: map[string]string{
			"p0": "What is your favorite breakfast?",
			"p1": "What is your favorite dinner?",
			"p2": "What is your favorite breakfast?",
		},
		Answers:     map[string]string{"p0": "pancakes", "p2": "eggs"},
		Votes:       map[string]string{"p0": "p2"},
		LiarVotes:   map[string][]string{"p1": {"p0", "p2"}},
		ReadyToVote: []string{"p0"},
		TotalScores: map[string]int{"p0": 3, "p1": 4, "p2": 1},
		Results: &GameResults{
			FinalRound:   3,
			GameComplete: false,
			Reason:       "Not enough players to continue.",
			TotalScores:  map[string]int{"p0": 3, "p1": 4, "p2": 1},
		},
		QuestionPhaseStart:      1700000100000,
		VotingPhaseStart:        1700000190000,
		VoteSelectionPhaseStart: 1700000250000,
		PhaseDeadline:           1700000295000,
	}

	data, err := json.Marshal(room)
	assert.NoError(t, err)

	var decoded GameRoom
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, room, &decoded)
}

func TestAppendLobbyEventCapsLog(t *testing.T) {
	room := &GameRoom{}
	for i := 0; i < 60; i++ {
		room.AppendLobbyEvent(50, fmt.Sprintf("event %d", i))
	}

	assert.Len(t, room.LobbyEvents, 50)
	assert.Equal(t, "event 10", room.LobbyEvents[0], "oldest events are dropped first")
	assert.Equal(t, "event 59", room.LobbyEvents[49])
}
