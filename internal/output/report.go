package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/temirov/inventory/internal/inventory"
	"github.com/temirov/inventory/internal/utils"
)

const (
	reportFileExtension   = ".md"
	reportFileNameFormat  = "%s-%s" + reportFileExtension
	reportFilePermissions = 0o644
)

// ErrReportWrite matches every *ReportWriteError via errors.Is.
var ErrReportWrite = errors.New("report write error")

// ReportWriteError reports an existing report file or a failed write.
type ReportWriteError struct {
	Path string
	Err  error
}

func (reportError *ReportWriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", reportError.Path, reportError.Err)
}

func (reportError *ReportWriteError) Unwrap() error {
	return reportError.Err
}

// Is lets errors.Is(err, ErrReportWrite) match.
func (reportError *ReportWriteError) Is(target error) bool {
	return target == ErrReportWrite
}

// ReportFileName returns <rootName>-<YYYYMMDDHHMMSS>.md.
func ReportFileName(rootName string, generatedAt time.Time) string {
	return fmt.Sprintf(reportFileNameFormat, rootName, utils.FormatReportFileTimestamp(generatedAt))
}

// WriteMarkdownReport renders the report for root and creates it inside metadata.RootPath.
// An existing file with the same name is never overwritten. It returns the report path
// and the rendered Markdown.
func WriteMarkdownReport(root *inventory.Node, metadata ReportMetadata) (string, string, error) {
	reportPath := filepath.Join(metadata.RootPath, ReportFileName(root.Name, metadata.GeneratedAt))
	renderedReport := RenderMarkdown(root, metadata)

	// #nosec G304
	reportFile, openError := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, reportFilePermissions)
	if openError != nil {
		return "", "", &ReportWriteError{Path: reportPath, Err: openError}
	}
	if _, writeError := reportFile.WriteString(renderedReport); writeError != nil {
		_ = reportFile.Close()
		return "", "", &ReportWriteError{Path: reportPath, Err: writeError}
	}
	if closeError := reportFile.Close(); closeError != nil {
		return "", "", &ReportWriteError{Path: reportPath, Err: closeError}
	}
	return reportPath, renderedReport, nil
}
