// Package tokenizer estimates token counts for module sources.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

var openAIModelPrefixes = []string{
	"gpt-",
	"text-embedding",
	"davinci",
	"curie",
	"babbage",
	"ada",
	"code-",
}

// NewCounter returns a Counter for the requested model together with the resolved
// model name. Models tiktoken does not know fall back to the cl100k_base encoding.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	lowerModel := strings.ToLower(model)

	if isOpenAIModel(lowerModel) {
		encoding, err := tiktoken.EncodingForModel(lowerModel)
		if err == nil && encoding != nil {
			return openAICounter{encoding: encoding, name: lowerModel}, model, nil
		}
	}

	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("initialize %s tokenizer: %w", defaultEncodingName, fallbackErr)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

func isOpenAIModel(model string) bool {
	for _, prefix := range openAIModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
