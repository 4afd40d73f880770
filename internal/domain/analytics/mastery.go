package analytics

import (
	"math"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// SuccessRate is the mean accuracy over all attempts, rounded to two
// decimals. It is 0 when there are no attempts.
func SuccessRate(attempts []domain.QuizAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}

	var sum float64
	for _, a := range attempts {
		sum += a.Accuracy
	}
	return math.Round(sum/float64(len(attempts))*100) / 100
}
