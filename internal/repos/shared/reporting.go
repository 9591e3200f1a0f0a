package shared

import (
	"fmt"
	"io"
	"os"
)

const (
	ignoredRepositoriesNoticeTemplateConstant = "\n(Ignored %d %s which %s outside of the current working directory.)\n\n"
	singularRepositoryNounConstant            = "repository"
	pluralRepositoryNounConstant              = "repositories"
	singularVerbConstant                      = "is"
	pluralVerbConstant                        = "are"
)

// Reporter emits formatted command output to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer, defaulting to standard output.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, format, args...)
}

// FormatIgnoredRepositoriesNotice describes how many known repositories fell outside the working directory.
// It returns an empty string when nothing was ignored.
func FormatIgnoredRepositoriesNotice(ignoredCount int) string {
	if ignoredCount <= 0 {
		return ""
	}
	if ignoredCount == 1 {
		return fmt.Sprintf(ignoredRepositoriesNoticeTemplateConstant, ignoredCount, singularRepositoryNounConstant, singularVerbConstant)
	}
	return fmt.Sprintf(ignoredRepositoriesNoticeTemplateConstant, ignoredCount, pluralRepositoryNounConstant, pluralVerbConstant)
}
