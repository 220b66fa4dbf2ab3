package errors

import (
	"strings"
	"unicode"
)

// maxLabelLength bounds subgraph labels, which become file names.
const maxLabelLength = 200

// ValidateLabel validates a subgraph label for use as a file name.
//
// Labels name both the DOT source and the rendered image, so they must be a
// plain base name:
//   - not empty, at most 200 characters
//   - no control characters or null bytes
//   - no path separators (/ or \)
//   - not "." or ".."
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "subgraph label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "subgraph label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "subgraph label %q contains control characters", label)
		}
	}

	if strings.ContainsAny(label, `/\`) {
		return New(ErrCodeInvalidLabel, "subgraph label %q cannot contain path separators", label)
	}

	if label == "." || label == ".." {
		return New(ErrCodeInvalidLabel, "subgraph label %q cannot be a relative directory name", label)
	}

	return nil
}

// ValidateLabels validates every label and rejects duplicates, which would
// make two subgraphs overwrite each other's files.
func ValidateLabels(labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if err := ValidateLabel(l); err != nil {
			return err
		}
		if seen[l] {
			return New(ErrCodeInvalidLabel, "duplicate subgraph label %q", l)
		}
		seen[l] = true
	}
	return nil
}
