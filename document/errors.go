package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransform is returned when a document cannot be parsed or mapped
	// to a graph. Nothing may be committed after it.
	ErrTransform = errors.New("document transform failed")

	// ErrValidation is returned when a document does not match the block
	// palette and strict validation is requested.
	ErrValidation = errors.New("document validation failed")
)

// Issue is one mismatch between a document and the block palette.
type Issue struct {
	BlockID   string `json:"block_id,omitempty"`
	BlockType string `json:"block_type"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.BlockType)
	if i.BlockID != "" {
		b.WriteString("#" + i.BlockID)
	}
	if i.Field != "" {
		b.WriteString("." + i.Field)
	}
	b.WriteString(": " + i.Reason)
	return b.String()
}

// ValidationError collects the issues of a rejected document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("%d validation issue(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Is makes a ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
