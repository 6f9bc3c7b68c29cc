package game

import (
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"

	"github.com/gin-gonic/gin"
)

// RoomState builds the update_game_state payload for a room: the
// phase-filtered view every client in the room may see. Secret fields
// (roles, imposter ids, private questions) stay out of it until the
// results phase; leaking one here would be a bug a client cannot undo.
func RoomState(room *redis_models.GameRoom) gin.H {
	active := room.ActivePlayers()

	players := make([]gin.H, 0, len(active))
	for _, p := range active {
		players = append(players, gin.H{
			"id":     p.ID,
			"name":   p.Name,
			"avatar": p.Avatar,
		})
	}

	state := gin.H{
		"roomId":       room.ID,
		"phase":        room.Phase,
		"players":      players,
		"hostId":       room.HostID,
		"lobbyEvents":  room.LobbyEvents,
		"settings":     room.Settings,
		"currentRound": room.CurrentRound,
		"totalRounds":  room.TotalRounds,
	}

	switch room.Phase {
	case redis_models.PhaseQuestion:
		state["questionPhaseStartTimestamp"] = room.QuestionPhaseStart
		state["phaseEndTimestamp"] = room.PhaseDeadline
		state["submittedCount"] = len(room.Answers)
		state["answers"] = answerList(room, true)

	case redis_models.PhaseVoting:
		state["questionPhaseStartTimestamp"] = room.QuestionPhaseStart
		state["votingPhaseStartTimestamp"] = room.VotingPhaseStart
		state["phaseEndTimestamp"] = room.PhaseDeadline
		state["answers"] = answerList(room, false)
		state["mainQuestion"] = room.MainQuestion
		state["ready_to_vote"] = room.ReadyToVote

	case redis_models.PhaseVoteSelection:
		state["questionPhaseStartTimestamp"] = room.QuestionPhaseStart
		state["votingPhaseStartTimestamp"] = room.VotingPhaseStart
		state["voteSelectionStartTimestamp"] = room.VoteSelectionPhaseStart
		state["phaseEndTimestamp"] = room.PhaseDeadline
		state["answers"] = answerList(room, false)
		state["mainQuestion"] = room.MainQuestion
		state["ready_to_vote"] = room.ReadyToVote
		state["liarVotes"] = room.LiarVotes

	case redis_models.PhaseResults:
		state["results"] = room.Results
		state["questions"] = room.Questions
		state["imposterIds"] = room.ImposterIDs
		state["roles"] = room.Roles
	}

	return state
}

// answerList flattens the answer map into (playerId, name, answer) rows.
// activeOnly restricts the list to connected players, used while answers
// are still being collected.
func answerList(room *redis_models.GameRoom, activeOnly bool) []gin.H {
	answers := make([]gin.H, 0, len(room.Answers))
	for _, p := range room.Players {
		if activeOnly && p.Disconnected {
			continue
		}
		answer, ok := room.Answers[p.ID]
		if !ok {
			continue
		}
		answers = append(answers, gin.H{
			"playerId": p.ID,
			"name":     p.Name,
			"answer":   answer,
		})
	}
	return answers
}

// PersonalInfo builds the private personal_game_info payload for a single
// player: their role and their (possibly imposter) prompt.
func PersonalInfo(room *redis_models.GameRoom, playerID string) gin.H {
	return gin.H{
		"role":     room.Roles[playerID],
		"question": room.Questions[playerID],
	}
}
