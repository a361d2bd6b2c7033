/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NewStoreIsLobby(t *testing.T) {
	t.Parallel()

	s := NewStore().Snapshot()

	assert.Equal(t, StateLobby, s.State)
	assert.NotNil(t, s.Players)
	assert.Empty(t, s.Players)
	assert.NotNil(t, s.Questions)
	assert.Empty(t, s.Questions)
	assert.Zero(t, s.CurrentQuestionIndex)
	assert.Zero(t, s.TimeLeft)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddPlayer("a", "Alice")
	s.LoadQuestions(testQuestions)

	snap := s.Snapshot()
	snap.Players[0].Score = 999
	snap.Questions[0].Options[0] = "changed"

	p, ok := s.Player("a")
	require.True(t, ok)
	assert.Zero(t, p.Score)

	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "3", q.Options[0])
	assert.Equal(t, "3", testQuestions[0].Options[0])
}

func TestStore_LeaderboardSortsByScore(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddPlayer("a", "Alice")
	s.AddPlayer("b", "Bob")
	s.AddPlayer("c", "Carol")
	s.SetScore("a", 100)
	s.SetScore("b", 300)
	s.SetScore("c", 100)

	names := func() []string {
		var out []string
		for _, p := range s.Snapshot().Players {
			out = append(out, p.Name)
		}

		return out
	}

	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names(), "join order outside the leaderboard")

	s.SetState(StateLeaderboard)
	assert.Equal(t, []string{"Bob", "Alice", "Carol"}, names(), "ties keep join order")
}

func TestStore_Players(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddPlayer("a", "Alice")
	s.AddPlayer("b", "Bob")

	s.AddScore("a", 100)
	s.AddScore("a", 100)
	s.AddScore("missing", 100)
	s.MarkAnswered("b")

	a, _ := s.Player("a")
	b, _ := s.Player("b")
	assert.Equal(t, 200, a.Score)
	assert.True(t, b.HasAnswered)

	assert.True(t, s.RemovePlayer("a"))
	assert.False(t, s.RemovePlayer("a"))
	assert.Equal(t, 1, s.PlayerCount())

	_, ok := s.Player("a")
	assert.False(t, ok)
}

func TestStore_AllAnswered(t *testing.T) {
	t.Parallel()

	s := NewStore()
	assert.False(t, s.AllAnswered(), "an empty room has not answered")

	s.AddPlayer("a", "Alice")
	s.AddPlayer("b", "Bob")
	s.MarkAnswered("a")
	assert.False(t, s.AllAnswered())

	s.MarkAnswered("b")
	assert.True(t, s.AllAnswered())

	s.ResetAnswers()
	assert.False(t, s.AllAnswered())
}

func TestStore_Questions(t *testing.T) {
	t.Parallel()

	s := NewStore()

	_, ok := s.CurrentQuestion()
	assert.False(t, ok)
	assert.False(t, s.HasNextQuestion())

	s.LoadQuestions(testQuestions)
	assert.Equal(t, 2, s.QuestionCount())
	assert.True(t, s.HasNextQuestion())

	s.AdvanceQuestionIndex()
	q, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q2", q.ID)
	assert.False(t, s.HasNextQuestion())

	s.ClearQuestions()
	assert.Zero(t, s.QuestionCount())
	assert.Zero(t, s.QuestionIndex())
}

func TestStore_SetTimeLeftClampsAtZero(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.SetTimeLeft(-3)

	assert.Zero(t, s.TimeLeft())
}

func TestStore_ResetSession(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.AddPlayer("a", "Alice")
	s.LoadQuestions(testQuestions)
	s.AdvanceQuestionIndex()
	s.SetState(StateResult)
	s.SetTimeLeft(4)

	s.ResetSession()

	assert.Equal(t, NewStore().Snapshot(), s.Snapshot())
}
