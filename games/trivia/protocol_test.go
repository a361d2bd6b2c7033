/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  Command
	}{
		"identify host":    {`{"type":"identify_host"}`, IdentifyHost{}},
		"join":             {`{"type":"join","name":"Alice"}`, Join{Name: "Alice"}},
		"join trims name":  {`{"type":"join","name":"  Bob "}`, Join{Name: "Bob"}},
		"answer":           {`{"type":"answer","questionIndex":1,"answerIndex":3}`, Answer{QuestionIndex: 1, AnswerIndex: 3}},
		"answer zero":      {`{"type":"answer","questionIndex":0,"answerIndex":0}`, Answer{}},
		"start game empty": {`{"type":"start_game"}`, StartGame{}},
		"start game": {
			`{"type":"start_game","questions":[{"id":"q1","text":"?","options":["a","b"],"correctAnswer":1}]}`,
			StartGame{Questions: []Question{{ID: "q1", Text: "?", Options: []string{"a", "b"}, CorrectAnswer: 1}}},
		},
		"next question":  {`{"type":"next_question"}`, NextQuestion{}},
		"show results":   {`{"type":"show_results"}`, ShowResults{}},
		"restart":        {`{"type":"restart"}`, Restart{}},
		"unknown fields": {`{"type":"restart","extra":true}`, Restart{}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodeCommand([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeCommand_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input string
		want  error
	}{
		"not json":             {`hello`, ErrMalformedCommand},
		"not an object":        {`[1,2]`, ErrMalformedCommand},
		"missing type":         {`{"name":"Alice"}`, ErrMalformedCommand},
		"type is a number":     {`{"type":7}`, ErrMalformedCommand},
		"unknown type":         {`{"type":"cheat"}`, ErrUnknownCommand},
		"join without name":    {`{"type":"join"}`, ErrMalformedCommand},
		"join blank name":      {`{"type":"join","name":"   "}`, ErrMalformedCommand},
		"join long name":       {`{"type":"join","name":"` + strings.Repeat("x", maxNameLength+1) + `"}`, ErrMalformedCommand},
		"join name not string": {`{"type":"join","name":5}`, ErrMalformedCommand},
		"answer missing index": {`{"type":"answer","answerIndex":1}`, ErrMalformedCommand},
		"answer not a number":  {`{"type":"answer","questionIndex":0,"answerIndex":"b"}`, ErrMalformedCommand},
		"questions not a list": {`{"type":"start_game","questions":"many"}`, ErrMalformedCommand},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeCommand([]byte(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHostOnly(t *testing.T) {
	t.Parallel()

	for _, c := range []Command{StartGame{}, NextQuestion{}, ShowResults{}, Restart{}} {
		assert.True(t, hostOnly(c), c.Type())
	}

	for _, c := range []Command{IdentifyHost{}, Join{}, Answer{}} {
		assert.False(t, hostOnly(c), c.Type())
	}
}
