package game

import (
	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
	redis_models "github.com/StylizedAce/DaiMaouLiarGame/models/redis"
)

// RoundScores computes every player's score delta for the round that just
// ended, from the liar-vote tally. Self-votes never count, in either
// direction.
//
// Zero-imposter rounds (mayhem can roll them): anyone active who dodged
// every accusation gains +2, and every accusation cast was necessarily
// wrong, costing its voter 1 point.
//
// Rounds with imposters: a still-present imposter gains +2 when nobody
// accused them and +1 when no more than half the active players did.
// Active non-imposters gain +1 per correct accusation minus 1 per wrong
// one in mayhem mode, or a flat +1 for at least one correct accusation in
// normal mode.
func RoundScores(room *redis_models.GameRoom) map[string]int {
	scores := map[string]int{}

	active := room.ActivePlayers()
	activeCount := len(active)
	if activeCount == 0 {
		return scores
	}

	votesAgainst := func(targetID string) int {
		n := 0
		for _, voterID := range room.LiarVotes[targetID] {
			if voterID != targetID {
				n++
			}
		}
		return n
	}

	// cast tallies per voter, self-votes excluded
	correctCasts := map[string]int{}
	wrongCasts := map[string]int{}
	for targetID, voters := range room.LiarVotes {
		for _, voterID := range voters {
			if voterID == targetID {
				continue
			}
			if room.IsImposter(targetID) {
				correctCasts[voterID]++
			} else {
				wrongCasts[voterID]++
			}
		}
	}

	if len(room.ImposterIDs) == 0 {
		for _, p := range active {
			if votesAgainst(p.ID) == 0 {
				scores[p.ID] += 2
			}
			scores[p.ID] -= wrongCasts[p.ID]
		}
		return scores
	}

	for _, imposterID := range room.ImposterIDs {
		imposter := room.FindPlayer(imposterID)
		if imposter == nil || imposter.Disconnected {
			// Gone imposters earn nothing; votes against them still
			// counted as correct casts above.
			continue
		}
		received := votesAgainst(imposterID)
		switch {
		case received == 0:
			scores[imposterID] += 2
		case received*2 <= activeCount:
			scores[imposterID] += 1
		}
	}

	mayhem := room.Settings.GameMode == game_constants.GameModeMayhem
	for _, p := range active {
		if room.IsImposter(p.ID) {
			continue
		}
		if mayhem {
			scores[p.ID] += correctCasts[p.ID] - wrongCasts[p.ID]
		} else if correctCasts[p.ID] > 0 {
			scores[p.ID] += 1
		}
	}

	return scores
}
