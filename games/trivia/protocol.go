/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 32

var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownCommand   = errors.New("unknown command type")
)

// Client -> server message types.
const (
	TypeIdentifyHost = "identify_host"
	TypeJoin         = "join"
	TypeAnswer       = "answer"
	TypeStartGame    = "start_game"
	TypeNextQuestion = "next_question"
	TypeShowResults  = "show_results"
	TypeRestart      = "restart"
)

// Server -> client message types.
const (
	TypeSync       = "sync"
	TypeTerminated = "game_terminated"
	TypeError      = "error"
)

// Command is one decoded client message.
type Command interface {
	Type() string
}

type IdentifyHost struct{}

type Join struct {
	Name string
}

type Answer struct {
	QuestionIndex int
	AnswerIndex   int
}

type StartGame struct {
	Questions []Question
}

type NextQuestion struct{}

type ShowResults struct{}

type Restart struct{}

func (IdentifyHost) Type() string { return TypeIdentifyHost }
func (Join) Type() string         { return TypeJoin }
func (Answer) Type() string       { return TypeAnswer }
func (StartGame) Type() string    { return TypeStartGame }
func (NextQuestion) Type() string { return TypeNextQuestion }
func (ShowResults) Type() string  { return TypeShowResults }
func (Restart) Type() string      { return TypeRestart }

// hostOnly commands are ignored unless sent by the room's host.
func hostOnly(c Command) bool {
	switch c.(type) {
	case StartGame, NextQuestion, ShowResults, Restart:
		return true
	}

	return false
}

// Wire shapes. Pointers mark the fields that must be present.
type envelope struct {
	Type string `json:"type"`
}

type joinBody struct {
	Name *string `json:"name"`
}

type answerBody struct {
	QuestionIndex *int `json:"questionIndex"`
	AnswerIndex   *int `json:"answerIndex"`
}

type startGameBody struct {
	Questions []Question `json:"questions"`
}

// DecodeCommand reads the type tag first and then decodes the body for that
// type only. Anything that does not match its shape is rejected.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	switch env.Type {
	case TypeIdentifyHost:
		return IdentifyHost{}, nil

	case TypeJoin:
		var b joinBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%w: join: %v", ErrMalformedCommand, err)
		}
		if b.Name == nil {
			return nil, fmt.Errorf("%w: join: missing name", ErrMalformedCommand)
		}

		name := strings.TrimSpace(*b.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			return nil, fmt.Errorf("%w: join: name must be 1-%d characters", ErrMalformedCommand, maxNameLength)
		}

		return Join{Name: name}, nil

	case TypeAnswer:
		var b answerBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%w: answer: %v", ErrMalformedCommand, err)
		}
		if b.QuestionIndex == nil || b.AnswerIndex == nil {
			return nil, fmt.Errorf("%w: answer: missing questionIndex or answerIndex", ErrMalformedCommand)
		}

		return Answer{QuestionIndex: *b.QuestionIndex, AnswerIndex: *b.AnswerIndex}, nil

	case TypeStartGame:
		var b startGameBody
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%w: start_game: %v", ErrMalformedCommand, err)
		}

		return StartGame{Questions: b.Questions}, nil

	case TypeNextQuestion:
		return NextQuestion{}, nil

	case TypeShowResults:
		return ShowResults{}, nil

	case TypeRestart:
		return Restart{}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedCommand)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
}

// SyncMessage carries the complete game session.
type SyncMessage struct {
	Type string   `json:"type"` // "sync"
	Data Snapshot `json:"data"`
}

// TerminatedMessage tells everyone left in a room that the host is gone.
type TerminatedMessage struct {
	Type string `json:"type"` // "game_terminated"
}

// ErrorMessage is sent only to the connection whose message was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}
