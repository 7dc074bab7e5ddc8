package elo

import (
	"math"
	"math/rand"

	"duel/internal/models"
)

// Bot rating ranges per difficulty. A bot opponent's rating is drawn
// uniformly from the range for the requesting player's difficulty so the
// pairing looks plausible on the client.
const (
	botEasyMin   = 800
	botEasyMax   = 1000
	botMediumMin = 1000
	botMediumMax = 1200
	botHardMin   = 1200
	botHardMax   = 1400
)

// WithinWindow reports whether two ratings are close enough to pair under
// the given window.
func WithinWindow(rating1, rating2, window int) bool {
	return RatingDiff(rating1, rating2) <= window
}

// RatingDiff returns the absolute rating difference.
func RatingDiff(rating1, rating2 int) int {
	return int(math.Abs(float64(rating1 - rating2)))
}

// BotRating maps a difficulty to a rating for an AI opponent. Unknown
// difficulties fall back to the medium range.
func BotRating(difficulty string) int {
	switch difficulty {
	case models.DifficultyEasy:
		return botEasyMin + rand.Intn(botEasyMax-botEasyMin)
	case models.DifficultyHard:
		return botHardMin + rand.Intn(botHardMax-botHardMin)
	default:
		return botMediumMin + rand.Intn(botMediumMax-botMediumMin)
	}
}
