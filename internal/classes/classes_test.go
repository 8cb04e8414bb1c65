package classes

import (
	"errors"
	"testing"
)

func TestVocabularyOrder(t *testing.T) {
	v, err := NewVocabulary([]string{"neutral", "toxic", "spam"}, "")
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	want := []string{"neutral", "toxic", "spam"}
	got := v.Labels()
	if len(got) != len(want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels = %v, want %v", got, want)
		}
	}
	if i, err := v.Index("spam"); err != nil || i != 2 {
		t.Fatalf("Index(spam) = %d, %v", i, err)
	}
}

func TestVocabularyRefClassMovesToFront(t *testing.T) {
	v, err := NewVocabulary([]string{"neutral", "toxic", "spam"}, "toxic")
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	if label, err := v.Label(0); err != nil || label != "toxic" {
		t.Fatalf("Label(0) = %q, %v, want toxic", label, err)
	}
	// Remaining classes keep their relative order.
	if label, _ := v.Label(1); label != "neutral" {
		t.Fatalf("Label(1) = %q, want neutral", label)
	}
	if label, _ := v.Label(2); label != "spam" {
		t.Fatalf("Label(2) = %q, want spam", label)
	}
}

func TestVocabularyUnknownRefClass(t *testing.T) {
	_, err := NewVocabulary([]string{"a", "b"}, "c")
	if !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("err = %v, want ErrUnknownLabel", err)
	}
}

func TestVocabularyValidation(t *testing.T) {
	if _, err := NewVocabulary(nil, ""); !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("empty list err = %v, want ErrEmptyVocabulary", err)
	}
	if _, err := NewVocabulary([]string{"a", "b", "a"}, ""); !errors.Is(err, ErrDuplicateLabel) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateLabel", err)
	}
}

func TestVocabularyUnknownLookup(t *testing.T) {
	v, err := NewVocabulary([]string{"a", "b"}, "")
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}
	if _, err := v.Index("z"); !errors.Is(err, ErrUnknownLabel) {
		t.Fatalf("Index err = %v, want ErrUnknownLabel", err)
	}
	if v.Contains("z") {
		t.Fatal("Contains(z) = true")
	}
	if _, err := v.Label(2); err == nil {
		t.Fatal("Label(2) should fail on a 2-class vocabulary")
	}
}
