package game

import (
	"testing"

	game_constants "github.com/StylizedAce/DaiMaouLiarGame/constants/game"

	"github.com/stretchr/testify/assert"
)

func TestImposterCountNormalModeIsAlwaysOne(t *testing.T) {
	rng := testRng()
	for n := 2; n <= 8; n++ {
		assert.Equal(t, 1, ImposterCount(game_constants.GameModeNormal, n, rng))
	}
}

func TestImposterCountEmptyRoom(t *testing.T) {
	assert.Zero(t, ImposterCount(game_constants.GameModeNormal, 0, testRng()))
	assert.Zero(t, ImposterCount(game_constants.GameModeMayhem, 0, testRng()))
}

func TestImposterCountMayhemStaysInBounds(t *testing.T) {
	rng := testRng()
	for n := 2; n <= 10; n++ {
		for i := 0; i < 500; i++ {
			count := ImposterCount(game_constants.GameModeMayhem, n, rng)
			assert.GreaterOrEqual(t, count, 0)
			assert.LessOrEqual(t, count, n)
		}
	}
}

func TestImposterCountMayhemRollsExtremes(t *testing.T) {
	rng := testRng()
	sawZero, sawMultiple := false, false
	for i := 0; i < 2000; i++ {
		count := ImposterCount(game_constants.GameModeMayhem, 6, rng)
		if count == 0 {
			sawZero = true
		}
		if count > 1 {
			sawMultiple = true
		}
	}
	assert.True(t, sawZero, "mayhem must be able to roll a liar-free round")
	assert.True(t, sawMultiple, "mayhem must be able to roll several imposters")
}
