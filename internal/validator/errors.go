package validator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructural is the sentinel every structural validation failure unwraps to.
var ErrStructural = errors.New("structural validation failed")

// StructuralError lists every hard violation found in one candidate tree.
type StructuralError struct {
	Messages []string
}

func (e *StructuralError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("%s: %s", ErrStructural.Error(), e.Messages[0])
	}
	return fmt.Sprintf("%s: %d errors: %s", ErrStructural.Error(), len(e.Messages), strings.Join(e.Messages, "; "))
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}
