/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	DefaultQuestionTime = 30 * time.Second
	DefaultResultTime   = 5 * time.Second

	pointsPerCorrectAnswer = 100
	inboxSize              = 64
)

var ErrRoomClosed = errors.New("room closed")

// Options configures every room created by a Manager.
type Options struct {
	Clock        clockwork.Clock
	Logger       zerolog.Logger
	QuestionTime time.Duration
	ResultTime   time.Duration

	// DefaultQuiz is played when the host starts a game without sending
	// any questions of its own.
	DefaultQuiz []Question
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.QuestionTime <= 0 {
		o.QuestionTime = DefaultQuestionTime
	}
	if o.ResultTime <= 0 {
		o.ResultTime = DefaultResultTime
	}

	return o
}

type event any

type connectEvent struct {
	id   string
	peer Peer
}

type disconnectEvent struct {
	id string
}

type messageEvent struct {
	id   string
	data []byte
}

// Room is the authoritative state machine of one game. All of its state is
// owned by the goroutine running Run: connections, commands and timer ticks
// are queued on a single inbox and applied one at a time, in arrival order.
type Room struct {
	key  string
	opts Options
	log  zerolog.Logger

	registry *Registry
	store    *Store
	timer    *Timer
	pub      *Publisher

	inbox     chan event
	quit      chan struct{}
	closeOnce sync.Once

	refs       atomic.Int64
	lastActive atomic.Int64
}

func NewRoom(key string, opts Options) *Room {
	opts = opts.withDefaults()

	r := &Room{
		key:      key,
		opts:     opts,
		log:      opts.Logger.With().Str("room", key).Logger(),
		registry: NewRegistry(),
		store:    NewStore(),
		inbox:    make(chan event, inboxSize),
		quit:     make(chan struct{}),
	}

	r.timer = newTimer(opts.Clock, r.quit, r.post)
	r.pub = NewPublisher(r.registry, r.log)
	r.touch()

	return r
}

func (r *Room) Key() string {
	return r.key
}

// Run processes events until ctx is cancelled or the room is closed.
func (r *Room) Run(ctx context.Context) {
	roomsActive.Inc()
	defer roomsActive.Dec()
	defer r.teardown()

	r.log.Debug().Msg("room started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case ev := <-r.inbox:
			r.handle(ev)
		}
	}
}

// Close stops the room. It is safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
}

// Done is closed once the room has stopped.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

func (r *Room) teardown() {
	r.Close()
	r.timer.Cancel()

	connectionsActive.Sub(float64(r.registry.Len()))

	r.log.Debug().Msg("room torn down")
}

func (r *Room) post(ev event) bool {
	select {
	case <-r.quit:
		return false
	default:
	}

	select {
	case r.inbox <- ev:
		return true
	case <-r.quit:
		return false
	}
}

// Connect adds a connection; it is sent the current session right away.
func (r *Room) Connect(id string, p Peer) error {
	if !r.post(connectEvent{id: id, peer: p}) {
		return ErrRoomClosed
	}

	return nil
}

func (r *Room) Disconnect(id string) error {
	if !r.post(disconnectEvent{id: id}) {
		return ErrRoomClosed
	}

	return nil
}

// Deliver queues a raw client message from connection id.
func (r *Room) Deliver(id string, data []byte) error {
	if !r.post(messageEvent{id: id, data: data}) {
		return ErrRoomClosed
	}

	return nil
}

func (r *Room) touch() {
	r.lastActive.Store(r.opts.Clock.Now().UnixNano())
}

// idleSince reports when the room last saw a connection or message.
func (r *Room) idleSince() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

func (r *Room) handle(ev event) {
	switch ev := ev.(type) {
	case connectEvent:
		r.touch()
		r.onConnect(ev.id, ev.peer)
	case disconnectEvent:
		r.touch()
		r.onDisconnect(ev.id)
	case messageEvent:
		r.touch()
		r.onMessage(ev.id, ev.data)
	case tickEvent:
		r.onTick(ev.gen)
	}
}

func (r *Room) onConnect(id string, p Peer) {
	r.registry.Register(id, p)
	connectionsActive.Inc()

	r.log.Info().
		Str("conn", id).
		Int("connections", r.registry.Len()).
		Msg("connection registered")

	r.pub.SendTo(id, SyncMessage{
		Type: TypeSync,
		Data: r.store.Snapshot(),
	})
}

func (r *Room) onDisconnect(id string) {
	if _, ok := r.registry.Peer(id); !ok {
		return
	}

	connectionsActive.Dec()

	if r.registry.Unregister(id) {
		r.log.Info().Str("conn", id).Msg("host disconnected, terminating game")
		r.terminate()

		return
	}

	r.log.Info().Str("conn", id).Msg("connection unregistered")

	if r.store.RemovePlayer(id) {
		r.publish()
	}
}

func (r *Room) onMessage(id string, data []byte) {
	if _, ok := r.registry.Peer(id); !ok {
		return
	}

	cmd, err := DecodeCommand(data)
	if err != nil {
		commandsTotal.WithLabelValues("invalid", outcomeMalformed).Inc()

		r.log.Debug().Err(err).Str("conn", id).Msg("discarded malformed message")
		r.pub.SendTo(id, ErrorMessage{
			Type:    TypeError,
			Message: err.Error(),
		})

		return
	}

	if hostOnly(cmd) && !r.registry.IsHost(id) {
		commandsTotal.WithLabelValues(cmd.Type(), outcomeRejected).Inc()

		r.log.Debug().Str("conn", id).Str("type", cmd.Type()).Msg("rejected host command from non-host")
		r.pub.SendTo(id, ErrorMessage{
			Type:    TypeError,
			Message: "only the host may send " + cmd.Type(),
		})

		return
	}

	outcome := outcomeIgnored
	if r.apply(id, cmd) {
		outcome = outcomeApplied
	}
	commandsTotal.WithLabelValues(cmd.Type(), outcome).Inc()
}

// apply runs a command against the session and reports whether it had any
// effect. Commands that are not legal in the current phase do nothing.
func (r *Room) apply(id string, cmd Command) bool {
	switch c := cmd.(type) {
	case IdentifyHost:
		return r.identifyHost(id)

	case Join:
		return r.join(id, c.Name)

	case StartGame:
		return r.startGame(c.Questions)

	case Answer:
		return r.answer(id, c)

	case NextQuestion:
		switch r.store.State() {
		case StateQuestion, StateResult:
			r.nextQuestion()
			return true
		}

	case ShowResults:
		if r.store.State() == StateQuestion {
			r.showResults()
			return true
		}

	case Restart:
		r.restart()
		return true
	}

	return false
}

func (r *Room) identifyHost(id string) bool {
	// A connection is either the host or a player, never both.
	if _, ok := r.store.Player(id); ok {
		return false
	}

	r.registry.MarkHost(id)
	r.log.Info().Str("conn", id).Msg("host identified")

	return true
}

func (r *Room) join(id, name string) bool {
	if r.store.State() == StateLeaderboard || r.registry.IsHost(id) {
		return false
	}
	if _, ok := r.store.Player(id); ok {
		return false
	}

	r.store.AddPlayer(id, name)
	r.log.Info().Str("conn", id).Str("name", name).Msg("player joined")

	r.publish()

	return true
}

func (r *Room) startGame(questions []Question) bool {
	if r.store.State() != StateLobby {
		return false
	}

	if len(questions) == 0 {
		questions = r.opts.DefaultQuiz
	}
	if len(questions) == 0 {
		return false
	}

	r.store.LoadQuestions(questions)
	r.store.ResetAnswers()
	r.setState(StateQuestion)
	r.startTimer(r.opts.QuestionTime)

	r.log.Info().
		Int("questions", len(questions)).
		Int("players", r.store.PlayerCount()).
		Msg("game started")

	r.publish()

	return true
}

func (r *Room) answer(id string, a Answer) bool {
	if r.store.State() != StateQuestion {
		return false
	}

	p, ok := r.store.Player(id)
	if !ok || p.HasAnswered {
		return false
	}

	// Answers for an earlier question arrive late; they do not count.
	if a.QuestionIndex != r.store.QuestionIndex() {
		return false
	}

	r.store.MarkAnswered(id)

	if q, ok := r.store.CurrentQuestion(); ok && a.AnswerIndex == q.CorrectAnswer {
		r.store.AddScore(id, pointsPerCorrectAnswer)
	}

	if r.store.AllAnswered() {
		r.showResults()

		return true
	}

	r.publish()

	return true
}

func (r *Room) showResults() {
	r.timer.Cancel()
	r.setState(StateResult)
	r.startTimer(r.opts.ResultTime)
	r.publish()
}

func (r *Room) nextQuestion() {
	if r.store.HasNextQuestion() {
		r.store.AdvanceQuestionIndex()
		r.store.ResetAnswers()
		r.setState(StateQuestion)
		r.startTimer(r.opts.QuestionTime)
	} else {
		r.timer.Cancel()
		r.store.SetTimeLeft(0)
		r.setState(StateLeaderboard)

		r.log.Info().Msg("game finished")
	}

	r.publish()
}

func (r *Room) restart() {
	r.timer.Cancel()
	r.setState(StateLobby)
	r.store.ClearQuestions()
	r.store.ResetScores()
	r.store.ResetAnswers()
	r.store.SetTimeLeft(0)

	r.log.Info().Msg("game restarted")

	r.publish()
}

// terminate ends the game after the host left. The timer is cancelled
// before the session is reset so no countdown outlives it.
func (r *Room) terminate() {
	r.timer.Cancel()
	r.pub.Terminate()
	r.store.ResetSession()
	transitionsTotal.WithLabelValues(string(StateLobby)).Inc()
	r.publish()
}

func (r *Room) onTick(gen uint64) {
	if !r.timer.Current(gen) {
		return
	}

	if left := r.store.TimeLeft(); left > 0 {
		r.store.SetTimeLeft(left - 1)
		r.publish()

		return
	}

	r.timer.Cancel()

	switch r.store.State() {
	case StateQuestion:
		r.showResults()
	case StateResult:
		r.nextQuestion()
	}
}

func (r *Room) startTimer(d time.Duration) {
	r.store.SetTimeLeft(int(d / time.Second))
	r.timer.Start()
}

func (r *Room) setState(s State) {
	if r.store.State() == s {
		return
	}

	r.store.SetState(s)
	transitionsTotal.WithLabelValues(string(s)).Inc()
}

func (r *Room) publish() {
	r.pub.Publish(r.store.Snapshot())
}
