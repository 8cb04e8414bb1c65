// Package classes holds the class vocabulary for a classification run: the
// ordered label list and its index lookup.
package classes

import (
	"errors"
	"fmt"
)

// #region errors
var (
	// ErrUnknownLabel is returned when a label is not in the vocabulary.
	ErrUnknownLabel = errors.New("unknown class label")

	// ErrEmptyVocabulary is returned when a vocabulary is built without
	// any classes.
	ErrEmptyVocabulary = errors.New("vocabulary needs at least one class")

	// ErrDuplicateLabel is returned when the class list repeats a label.
	ErrDuplicateLabel = errors.New("duplicate class label")
)

// #endregion errors

// #region vocabulary
// Vocabulary is an immutable ordered class list with index lookup. When a
// reference class is designated it occupies index 0, so binary threshold
// decisions can address it positionally.
type Vocabulary struct {
	labels  []string
	indices map[string]int
}

// NewVocabulary builds a vocabulary from the class list. If refClass is
// non-empty it must appear in the list and is moved to the front; relative
// order of the remaining classes is preserved.
func NewVocabulary(classList []string, refClass string) (*Vocabulary, error) {
	if len(classList) == 0 {
		return nil, ErrEmptyVocabulary
	}
	labels := make([]string, 0, len(classList))
	if refClass != "" {
		labels = append(labels, refClass)
	}
	seen := make(map[string]struct{}, len(classList))
	foundRef := refClass == ""
	for _, label := range classList {
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%q: %w", label, ErrDuplicateLabel)
		}
		seen[label] = struct{}{}
		if label == refClass {
			foundRef = true
			continue
		}
		labels = append(labels, label)
	}
	if !foundRef {
		return nil, fmt.Errorf("reference class %q: %w", refClass, ErrUnknownLabel)
	}
	indices := make(map[string]int, len(labels))
	for i, label := range labels {
		indices[label] = i
	}
	return &Vocabulary{labels: labels, indices: indices}, nil
}

// Labels returns a copy of the ordered class list.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Size returns the number of classes.
func (v *Vocabulary) Size() int { return len(v.labels) }

// Label returns the class at the given index.
func (v *Vocabulary) Label(index int) (string, error) {
	if index < 0 || index >= len(v.labels) {
		return "", fmt.Errorf("index %d out of range [0, %d)", index, len(v.labels))
	}
	return v.labels[index], nil
}

// Index returns the position of a label in the vocabulary.
func (v *Vocabulary) Index(label string) (int, error) {
	i, ok := v.indices[label]
	if !ok {
		return 0, fmt.Errorf("%q: %w", label, ErrUnknownLabel)
	}
	return i, nil
}

// Contains reports whether the label is in the vocabulary.
func (v *Vocabulary) Contains(label string) bool {
	_, ok := v.indices[label]
	return ok
}

// #endregion vocabulary
