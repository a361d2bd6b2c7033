/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"slices"
	"sort"
)

// State is the phase a room's game session is in.
type State string

const (
	StateLobby       State = "lobby"
	StateQuestion    State = "question"
	StateResult      State = "result"
	StateLeaderboard State = "leaderboard"
)

// Player holds the data we keep per joined connection.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	HasAnswered bool   `json:"hasAnswered,omitempty"`
}

// Question is one multiple-choice question. CorrectAnswer indexes Options.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	Text          string   `json:"text" yaml:"text"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
}

// Snapshot is the full game session as sent to clients in a sync message.
type Snapshot struct {
	State                State      `json:"state"`
	Players              []Player   `json:"players"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	Questions            []Question `json:"questions"`
	TimeLeft             int        `json:"timeLeft"`
}

// Store owns the mutable game session of a single room. It performs no
// validation; callers must only use it from the room's goroutine.
type Store struct {
	session Snapshot
}

func NewStore() *Store {
	s := &Store{}
	s.ResetSession()

	return s
}

// Snapshot returns a deep copy of the session. On the leaderboard the
// players are ordered by score, highest first.
func (s *Store) Snapshot() Snapshot {
	out := Snapshot{
		State:                s.session.State,
		Players:              make([]Player, len(s.session.Players)),
		CurrentQuestionIndex: s.session.CurrentQuestionIndex,
		Questions:            make([]Question, len(s.session.Questions)),
		TimeLeft:             s.session.TimeLeft,
	}

	copy(out.Players, s.session.Players)

	for i, q := range s.session.Questions {
		q.Options = slices.Clone(q.Options)
		out.Questions[i] = q
	}

	if out.State == StateLeaderboard {
		sort.SliceStable(out.Players, func(i, j int) bool {
			return out.Players[i].Score > out.Players[j].Score
		})
	}

	return out
}

func (s *Store) State() State {
	return s.session.State
}

func (s *Store) SetState(state State) {
	s.session.State = state
}

func (s *Store) TimeLeft() int {
	return s.session.TimeLeft
}

func (s *Store) SetTimeLeft(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	s.session.TimeLeft = seconds
}

func (s *Store) QuestionIndex() int {
	return s.session.CurrentQuestionIndex
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.session.Players {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func (s *Store) AddPlayer(id, name string) {
	s.session.Players = append(s.session.Players, Player{
		ID:   id,
		Name: name,
	})
}

// RemovePlayer reports whether a player with the given id was present.
func (s *Store) RemovePlayer(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.session.Players = slices.Delete(s.session.Players, i, i+1)

	return true
}

func (s *Store) Player(id string) (Player, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Player{}, false
	}

	return s.session.Players[i], true
}

func (s *Store) PlayerCount() int {
	return len(s.session.Players)
}

func (s *Store) SetScore(id string, score int) {
	if i := s.indexOf(id); i >= 0 {
		s.session.Players[i].Score = score
	}
}

func (s *Store) AddScore(id string, points int) {
	if i := s.indexOf(id); i >= 0 {
		s.session.Players[i].Score += points
	}
}

func (s *Store) MarkAnswered(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.session.Players[i].HasAnswered = true
	}
}

func (s *Store) ResetAnswers() {
	for i := range s.session.Players {
		s.session.Players[i].HasAnswered = false
	}
}

func (s *Store) ResetScores() {
	for i := range s.session.Players {
		s.session.Players[i].Score = 0
	}
}

// AllAnswered is false for an empty room, so a question never ends on its
// own with nobody playing.
func (s *Store) AllAnswered() bool {
	if len(s.session.Players) == 0 {
		return false
	}

	for _, p := range s.session.Players {
		if !p.HasAnswered {
			return false
		}
	}

	return true
}

// LoadQuestions replaces the question set and rewinds to the first question.
func (s *Store) LoadQuestions(questions []Question) {
	s.session.Questions = slices.Clone(questions)
	s.session.CurrentQuestionIndex = 0
}

func (s *Store) ClearQuestions() {
	s.session.Questions = []Question{}
	s.session.CurrentQuestionIndex = 0
}

func (s *Store) QuestionCount() int {
	return len(s.session.Questions)
}

func (s *Store) CurrentQuestion() (Question, bool) {
	i := s.session.CurrentQuestionIndex
	if i < 0 || i >= len(s.session.Questions) {
		return Question{}, false
	}

	return s.session.Questions[i], true
}

func (s *Store) HasNextQuestion() bool {
	return s.session.CurrentQuestionIndex < len(s.session.Questions)-1
}

func (s *Store) AdvanceQuestionIndex() {
	s.session.CurrentQuestionIndex++
}

// ResetSession returns the session to an empty lobby, dropping all players.
func (s *Store) ResetSession() {
	s.session = Snapshot{
		State:     StateLobby,
		Players:   []Player{},
		Questions: []Question{},
	}
}
