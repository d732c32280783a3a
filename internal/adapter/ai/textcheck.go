package ai

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/internx/internx/internal/domain"
)

// EnsurePlainText rejects payloads that sniff as something other than text,
// such as a PDF or image pasted into the resume field.
func EnsurePlainText(text string) error {
	mt := mimetype.Detect([]byte(text))
	if !strings.HasPrefix(mt.String(), "text/") && !mt.Is("application/json") {
		return &domain.Error{
			Kind:    domain.ErrInvalidArgument,
			Field:   "resumeText",
			Message: fmt.Sprintf("resume text must be plain text, got %s", mt.String()),
		}
	}
	return nil
}
