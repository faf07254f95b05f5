package tokenizer

import (
	"errors"

	"github.com/temirov/inventory/internal/utils"
)

// CountResult captures the outcome of counting a module source.
type CountResult struct {
	Tokens  int
	Counted bool
}

var errNilCounter = errors.New("nil tokenizer counter")

// CountBytes estimates tokens for data using counter. Binary or non-UTF-8 data is
// reported as not counted rather than as an error.
func CountBytes(counter Counter, data []byte) (CountResult, error) {
	if counter == nil {
		return CountResult{}, errNilCounter
	}
	if utils.IsBinary(data) {
		return CountResult{Counted: false}, nil
	}
	tokens, err := counter.CountString(string(data))
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Tokens: tokens, Counted: true}, nil
}
