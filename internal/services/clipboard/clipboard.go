// Package clipboard copies rendered reports to the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if copyError := clipboard.WriteAll(text); copyError != nil {
		return fmt.Errorf("copy report to clipboard: %w", copyError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
