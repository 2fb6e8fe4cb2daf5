package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codeladder/exam-backend/internal/config"
	"github.com/codeladder/exam-backend/internal/grader"
	"github.com/codeladder/exam-backend/internal/middleware"
	"github.com/codeladder/exam-backend/internal/model"
	"github.com/codeladder/exam-backend/internal/response"
	"github.com/codeladder/exam-backend/internal/service"
	ws "github.com/codeladder/exam-backend/internal/websocket"
)

// sessionState is the lifecycle of one WebSocket connection.
type sessionState int

const (
	// stateUninitialized accepts only joinExamAttempt.
	stateUninitialized sessionState = iota
	// stateActive accepts submitAnswer and finishExamAttempt.
	stateActive
	// stateEnded accepts nothing; every action errors with EXAM_ALREADY_ENDED.
	stateEnded
)

// WSHandler upgrades exam session connections and runs their event loop.
type WSHandler struct {
	attempts *service.AttemptService
	rdb      *redis.Client
	upgrader gorillaws.Upgrader
	log      zerolog.Logger
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, rdb *redis.Client, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		rdb:      rdb,
		upgrader: buildUpgrader(allowedOrigins),
		log:      log.With().Str("component", "ws_handler").Logger(),
	}
}

func buildUpgrader(allowedOrigins []string) gorillaws.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return gorillaws.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}
}

// attemptSession is the per-connection state. The read loop is the only
// writer of state transitions; the timer goroutine marks expiry through the
// mutex.
type attemptSession struct {
	mu        sync.Mutex
	state     sessionState
	studentID int
	attemptID uuid.UUID

	conn        *ws.Conn
	cancelTimer context.CancelFunc
	pubsub      *redis.PubSub
}

func (s *attemptSession) currentState() sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *attemptSession) transition(to sessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to > s.state {
		s.state = to
	}
}

// Stream handles GET /ws/v1/attempts/stream. One connection serves one
// attempt; the client must send joinExamAttempt before anything else.
func (h *WSHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := &attemptSession{
		studentID: claims.UserID,
		conn:      ws.Wrap(raw),
	}
	defer h.teardown(sess, raw)

	h.readLoop(c.Request.Context(), sess)
}

func (h *WSHandler) teardown(sess *attemptSession, raw *gorillaws.Conn) {
	if sess.cancelTimer != nil {
		sess.cancelTimer()
	}
	if sess.pubsub != nil {
		sess.pubsub.Close()
	}
	raw.Close()
	h.log.Debug().
		Int("student_id", sess.studentID).
		Str("attempt_id", sess.attemptID.String()).
		Msg("session closed")
}

func (h *WSHandler) readLoop(ctx context.Context, sess *attemptSession) {
	for {
		var env ws.Envelope
		if err := sess.conn.ReadEnvelope(&env); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("connection dropped")
			}
			return
		}
		h.dispatch(ctx, sess, &env)
	}
}

// dispatch routes one client request. Any failure is reported as an error
// event; the connection survives every application error.
func (h *WSHandler) dispatch(ctx context.Context, sess *attemptSession, env *ws.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("action", string(env.Action)).Msg("recovered in dispatch")
			sess.conn.WriteError(response.ErrOperationFailed)
		}
	}()

	switch sess.currentState() {
	case stateEnded:
		sess.conn.WriteError(response.ErrExamAlreadyEnded)
		return
	case stateUninitialized:
		if env.Action != ws.ActionJoinExamAttempt {
			sess.conn.WriteEvent(ws.ErrorPayload{
				Event:       ws.EventError,
				Code:        response.ErrInvalidPayload,
				Description: "joinExamAttempt must be the first action on this connection",
			})
			return
		}
	}

	switch env.Action {
	case ws.ActionJoinExamAttempt:
		h.handleJoin(ctx, sess, env)
	case ws.ActionSubmitAnswer:
		h.handleSubmitAnswer(ctx, sess, env)
	case ws.ActionFinishExamAttempt:
		h.handleFinish(ctx, sess, env)
	default:
		sess.conn.WriteEvent(ws.ErrorPayload{
			Event:       ws.EventError,
			Code:        response.ErrInvalidPayload,
			Description: "unknown action",
		})
	}
}

// ─── actions ───

func (h *WSHandler) handleJoin(ctx context.Context, sess *attemptSession, env *ws.Envelope) {
	if sess.currentState() == stateActive {
		sess.conn.WriteEvent(ws.ErrorPayload{
			Event:       ws.EventError,
			Code:        response.ErrInvalidPayload,
			Description: "attempt already joined on this connection",
		})
		return
	}

	attemptID, err := uuid.Parse(env.AttemptID)
	if err != nil {
		sess.conn.WriteError(response.ErrInvalidID)
		return
	}

	snapshot, set, err := h.attempts.Join(ctx, sess.studentID, attemptID)
	if err != nil {
		h.writeServiceError(sess, err)
		return
	}

	sess.attemptID = attemptID
	sess.transition(stateActive)
	h.startTimer(sess, snapshot.Attempt, set)
	h.startForwarder(sess)

	sess.conn.WriteEvent(ws.JoinSuccessPayload{
		Event:     ws.EventJoinSuccess,
		Attempt:   snapshot.Attempt,
		Questions: snapshot.Questions,
	})
	h.publishState(ctx, sess, snapshot)
}

func (h *WSHandler) handleSubmitAnswer(ctx context.Context, sess *attemptSession, env *ws.Envelope) {
	questionID, err := uuid.Parse(env.QuestionID)
	if err != nil {
		sess.conn.WriteError(response.ErrInvalidID)
		return
	}

	_, result, err := h.attempts.SubmitAnswer(ctx, sess.studentID, sess.attemptID, questionID, env.Answer)
	if err != nil {
		if errors.Is(err, service.ErrExamEnded) {
			sess.transition(stateEnded)
		}
		h.writeServiceError(sess, err)
		return
	}

	sess.conn.WriteEvent(ws.AnswerResultPayload{
		Event:  ws.EventAnswerResult,
		Result: result,
	})

	snapshot, err := h.attempts.GetSnapshot(ctx, sess.studentID, sess.attemptID)
	if err != nil {
		h.log.Warn().Err(err).Msg("snapshot after submit failed")
		return
	}
	h.publishState(ctx, sess, snapshot)
}

func (h *WSHandler) handleFinish(ctx context.Context, sess *attemptSession, env *ws.Envelope) {
	summary, err := h.attempts.Finish(ctx, sess.studentID, sess.attemptID, env.Note)
	if err != nil {
		if errors.Is(err, service.ErrExamEnded) {
			sess.transition(stateEnded)
		}
		h.writeServiceError(sess, err)
		return
	}

	sess.transition(stateEnded)
	if sess.cancelTimer != nil {
		sess.cancelTimer()
	}

	sess.conn.WriteEvent(ws.ExamFinishedPayload{
		Event:          ws.EventExamFinished,
		AttemptID:      summary.AttemptID.String(),
		EndTime:        summary.EndTime,
		CompletionRate: summary.CompletionRate,
		TotalAnswered:  summary.TotalAnswered,
		CorrectAnswers: summary.CorrectAnswers,
		Note:           summary.Note,
	})

	snapshot, err := h.attempts.GetSnapshot(ctx, sess.studentID, sess.attemptID)
	if err != nil {
		h.log.Warn().Err(err).Msg("snapshot after finish failed")
		return
	}
	h.publishState(ctx, sess, snapshot)
}

// ─── timer & broadcast ───

// startTimer runs this connection's countdown. Every connection of the
// attempt keeps its own clock from the shared start time; the conditional
// close makes the expiry writes idempotent across them.
func (h *WSHandler) startTimer(sess *attemptSession, attempt *model.ExamAttempt, set *model.ExamSet) {
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancelTimer = cancel
	endAt := attempt.ExpiresAt(set.TimeLimitMinutes)

	go ws.RunCountdown(ctx, endAt, ws.TickInterval,
		func(remaining time.Duration) {
			sess.conn.WriteEvent(ws.TimeUpdatePayload{
				Event:        ws.EventTimeUpdate,
				TimeLeft:     ws.FormatClock(remaining),
				TotalSeconds: int64(remaining.Seconds()),
			})
		},
		func() {
			h.onTimeUp(sess)
		},
	)
}

func (h *WSHandler) onTimeUp(sess *attemptSession) {
	sess.transition(stateEnded)

	ctx := context.Background()
	if err := h.attempts.CloseExpired(ctx, sess.attemptID); err != nil {
		h.log.Error().Err(err).Str("attempt_id", sess.attemptID.String()).Msg("close on expiry failed")
	}
	sess.conn.WriteEvent(ws.TimeUpPayload{Event: ws.EventTimeUp})

	// Closing on expiry is a persisted mutation like any other; the group
	// sees the terminal snapshot.
	if snapshot, err := h.attempts.GetSnapshot(ctx, sess.studentID, sess.attemptID); err != nil {
		h.log.Warn().Err(err).Msg("snapshot after expiry failed")
	} else {
		h.publishState(ctx, sess, snapshot)
	}

	h.log.Info().Str("attempt_id", sess.attemptID.String()).Msg("attempt time up")
}

// startForwarder subscribes to the attempt's broadcast channel and copies
// every published message to this connection.
func (h *WSHandler) startForwarder(sess *attemptSession) {
	sess.pubsub = h.rdb.Subscribe(context.Background(),
		config.CacheKey.AttemptEventsChannel(sess.attemptID.String()))

	go func() {
		for msg := range sess.pubsub.Channel() {
			if err := sess.conn.WriteRaw([]byte(msg.Payload)); err != nil {
				return
			}
		}
	}()
}

// publishState broadcasts the current snapshot to every connection of the
// attempt, including this one.
func (h *WSHandler) publishState(ctx context.Context, sess *attemptSession, snapshot *model.AttemptSnapshot) {
	payload, err := json.Marshal(ws.AttemptStatePayload{
		Event:    ws.EventAttemptState,
		Snapshot: snapshot,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal state broadcast")
		return
	}
	channel := config.CacheKey.AttemptEventsChannel(sess.attemptID.String())
	if err := h.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		h.log.Warn().Err(err).Msg("publish state broadcast")
	}
}

// writeServiceError maps domain errors to stable error codes.
func (h *WSHandler) writeServiceError(sess *attemptSession, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		sess.conn.WriteError(response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrExamSetNotFound):
		sess.conn.WriteError(response.ErrExamSetNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		sess.conn.WriteError(response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrUnauthorizedAccess):
		sess.conn.WriteError(response.ErrUnauthorizedAccess)
	case errors.Is(err, service.ErrExamEnded):
		sess.conn.WriteError(response.ErrExamAlreadyEnded)
	case errors.Is(err, service.ErrAlreadyAnswered):
		sess.conn.WriteError(response.ErrQuestionAlreadyAnswered)
	case errors.Is(err, grader.ErrUnsupportedLanguage):
		sess.conn.WriteError(response.ErrUnsupportedLanguage)
	case errors.Is(err, grader.ErrUnknownQuestionKind), errors.Is(err, grader.ErrMalformedQuestion):
		sess.conn.WriteError(response.ErrGradingFailed)
	default:
		h.log.Error().Err(err).Msg("unexpected service error")
		sess.conn.WriteError(response.ErrOperationFailed)
	}
}
