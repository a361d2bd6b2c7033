/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const minOptions = 2

var ErrInvalidQuiz = errors.New("invalid quiz")

//go:embed quizzes/default.yaml
var defaultQuizYAML []byte

// Quiz is the on-disk format of a question set.
type Quiz struct {
	Questions []Question `yaml:"questions"`
}

// ParseQuiz decodes and checks a YAML question set. Unlike questions sent
// by the host in start_game, files are validated up front.
func ParseQuiz(data []byte) ([]Question, error) {
	var q Quiz

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}

	if len(q.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidQuiz)
	}

	seen := make(map[string]bool, len(q.Questions))
	for i, question := range q.Questions {
		if err := question.validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuiz, i+1, err)
		}

		if seen[question.ID] {
			return nil, fmt.Errorf("%w: question %d: duplicate id %q", ErrInvalidQuiz, i+1, question.ID)
		}
		seen[question.ID] = true
	}

	return q.Questions, nil
}

// LoadQuiz reads a question set from path.
func LoadQuiz(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuiz(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return questions, nil
}

// DefaultQuiz returns the built-in question set.
func DefaultQuiz() []Question {
	questions, err := ParseQuiz(defaultQuizYAML)
	if err != nil {
		panic("embedded default quiz: " + err.Error())
	}

	return questions
}

func (q Question) validate() error {
	switch {
	case q.ID == "":
		return errors.New("missing id")
	case q.Text == "":
		return errors.New("missing text")
	case len(q.Options) < minOptions:
		return fmt.Errorf("needs at least %d options", minOptions)
	case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
		return fmt.Errorf("correctAnswer %d out of range", q.CorrectAnswer)
	}

	for i, o := range q.Options {
		if o == "" {
			return fmt.Errorf("option %d is empty", i+1)
		}
	}

	return nil
}
