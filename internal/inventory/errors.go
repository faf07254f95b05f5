package inventory

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrFilesystem matches every *FilesystemError via errors.Is.
	ErrFilesystem = errors.New("filesystem error")
	// ErrInvariantViolation matches every *InvariantViolationError via errors.Is.
	ErrInvariantViolation = errors.New("invariant violation")
)

// FilesystemError reports a missing, unreadable or vanished path during a scan.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (filesystemError *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", filesystemError.Op, filesystemError.Path, filesystemError.Err)
}

func (filesystemError *FilesystemError) Unwrap() error {
	return filesystemError.Err
}

// Is lets errors.Is(err, ErrFilesystem) match.
func (filesystemError *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

// InvariantViolationError reports a definition header carrying a keyword the parser does not support.
type InvariantViolationError struct {
	Keyword      string
	RelativePath string
}

func (violationError *InvariantViolationError) Error() string {
	return fmt.Sprintf("invalid function or class keyword %q in %s", violationError.Keyword, violationError.RelativePath)
}

// Is lets errors.Is(err, ErrInvariantViolation) match.
func (violationError *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// newFilesystemError wraps cause, dropping an *fs.PathError layer that would repeat
// the operation and path in the message.
func newFilesystemError(operation string, path string, cause error) error {
	var pathError *fs.PathError
	if errors.As(cause, &pathError) {
		cause = pathError.Err
	}
	return &FilesystemError{Op: operation, Path: path, Err: cause}
}
