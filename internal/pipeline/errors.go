package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoGenerator is returned by FromSource when no Generator is configured.
var ErrNoGenerator = errors.New("no generator configured")

// ErrEmptySource is returned by FromSource for blank source text. No model
// call is made.
var ErrEmptySource = errors.New("empty source code")

// LowScoreError reports a best candidate whose quality score is below the
// hard floor.
type LowScoreError struct {
	Score float64
	Floor float64
}

func (e *LowScoreError) Error() string {
	return fmt.Sprintf("quality score %.4f is below the minimum %.2f", e.Score, e.Floor)
}
