package game

import (
	"math/rand"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"
)

// ImposterCount decides how many imposters a round gets. Normal mode is
// always exactly one. Mayhem mode rolls a weighted band keyed by the
// active-player count, including the zero-imposter and near-all extremes.
func ImposterCount(gameMode string, activeCount int, rng *rand.Rand) int {
	if activeCount < 1 {
		return 0
	}
	if gameMode != game_constants.GameModeMayhem {
		return 1
	}

	count := mayhemRoll(activeCount, rng)
	if count < 0 {
		count = 0
	}
	if count > activeCount {
		count = activeCount
	}
	return count
}

func mayhemRoll(n int, rng *rand.Rand) int {
	roll := rng.Float64() * 100

	switch {
	case n == 4:
		switch {
		case roll < 10:
			return 0
		case roll < 30:
			return 3
		case roll < 90:
			return 2
		default:
			return 1
		}
	case n <= 6:
		switch {
		case roll < 5:
			return 0
		case roll < 10:
			return n - 1
		case roll < 25:
			return n - 2
		case roll < 70:
			return n / 2
		default:
			return min(3, n-2)
		}
	default: // 7+ players, maximum chaos potential
		switch {
		case roll < 3:
			return 0
		case roll < 8:
			return n - 1
		case roll < 18:
			return n - 2
		case roll < 40:
			return n / 2
		case roll < 70:
			return (n * 2) / 3
		default:
			return n / 3
		}
	}
}
