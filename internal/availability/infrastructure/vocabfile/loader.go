// Package vocabfile loads resolver vocabularies from YAML files.
package vocabfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/huddle/internal/availability/domain"
	"github.com/felixgeelhaar/huddle/internal/shared/infrastructure/security"
)

// Load reads the vocabulary at path. Keys missing from the file keep their
// built-in values. An empty path returns the built-in vocabulary.
func Load(path string) (domain.Vocabulary, error) {
	if path == "" {
		return domain.DefaultVocabulary(), nil
	}

	data, err := security.SafeReadFile(path)
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	vocab, err := Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("load vocabulary %s: %w", path, err)
	}
	return vocab, nil
}

// Decode parses a YAML vocabulary from r on top of the defaults. Unknown
// keys are rejected.
func Decode(r io.Reader) (domain.Vocabulary, error) {
	cfg := domain.DefaultVocabularyConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.Vocabulary{}, fmt.Errorf("%w: %v", domain.ErrInvalidVocabulary, err)
	}

	return domain.NewVocabulary(cfg)
}

// Encode writes v as YAML, suitable as a starting point for a custom file.
func Encode(w io.Writer, v domain.Vocabulary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v.Config()); err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}
	return enc.Close()
}
