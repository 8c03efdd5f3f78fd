package services

import (
	"context"
	"time"

	"techsupport-agent/database"
	"techsupport-agent/reasoning"
	"techsupport-agent/utils"
	"techsupport-agent/web/format"
	webtypes "techsupport-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FormatHTML asks for content_html alongside every answer.
const FormatHTML = "html"

// HistoryRecorder persists answered questions.
type HistoryRecorder interface {
	RecordQuestion(ctx context.Context, rec database.HistoryRecord) error
	RecentQuestions(ctx context.Context, limit int) ([]database.HistoryRecord, error)
}

const storeHistoryLimit = 200

// AskService validates questions, runs the engine and records history.
type AskService struct {
	engine            *reasoning.Engine
	history           *History
	recorder          HistoryRecorder
	logger            *zap.Logger
	maxQuestionLength int
}

// NewAskService wires the service. history and recorder are optional.
func NewAskService(engine *reasoning.Engine, history *History, recorder HistoryRecorder, logger *zap.Logger, maxQuestionLength int) *AskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskService{
		engine:            engine,
		history:           history,
		recorder:          recorder,
		logger:            logger,
		maxQuestionLength: maxQuestionLength,
	}
}

// Ask answers one request. Only invalid input produces an error; history
// failures are logged and swallowed.
func (s *AskService) Ask(ctx context.Context, req webtypes.AskRequest) (webtypes.AskResponse, error) {
	question, err := utils.SanitizeQuestion(req.Question, s.maxQuestionLength)
	if err != nil {
		return webtypes.AskResponse{}, err
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = utils.GenerateRequestID()
	}
	res := s.engine.Reason(reasoning.Request{Question: question, Metrics: req.SystemMetrics()})

	views := make([]webtypes.AnswerView, len(res.Answers))
	for i, a := range res.Answers {
		views[i] = webtypes.AnswerView{Answer: a}
		if req.Format == FormatHTML {
			views[i].ContentHTML = format.AnswerHTML(a)
		}
	}

	s.logger.Info("Answered question",
		zap.String("request_id", requestID),
		zap.Int("answers", len(res.Answers)),
		zap.Bool("emergency", res.Emergency),
		zap.Strings("symptoms", res.Symptoms.Active()))

	s.record(ctx, requestID, question, res)

	return webtypes.AskResponse{
		RequestID: requestID,
		Answers:   views,
		Symptoms:  res.Symptoms.Active(),
		Emergency: res.Emergency,
		Analysis:  reasoning.Analyze(question, res.Answers),
		Trace:     res.Trace,
	}, nil
}

func (s *AskService) record(ctx context.Context, requestID, question string, res reasoning.Result) {
	if s.history == nil && s.recorder == nil {
		return
	}

	rec := database.HistoryRecord{
		Question:    question,
		AnswerTypes: make([]string, len(res.Answers)),
		Emergency:   res.Emergency,
		Symptoms:    res.Symptoms.Active(),
		CreatedAt:   time.Now(),
	}
	if id, err := uuid.Parse(requestID); err == nil {
		rec.ID = id
	} else {
		rec.ID = uuid.New()
	}
	for i, a := range res.Answers {
		rec.AnswerTypes[i] = string(a.Type)
		if rec.TopCategory == "" && a.Category != "" {
			rec.TopCategory = a.Category
		}
	}

	if s.history != nil {
		s.history.Add(rec)
	}
	if s.recorder != nil {
		if err := s.recorder.RecordQuestion(ctx, rec); err != nil {
			s.logger.Warn("Failed to record question history",
				zap.Error(err),
				zap.String("request_id", requestID))
		}
	}
}

// History returns the recent questions, newest first. The in-memory cache
// answers when it holds enough records; otherwise the recorder is consulted,
// which covers a cold cache after a restart. limit <= 0 means everything the
// cache holds.
func (s *AskService) History(ctx context.Context, limit int) []database.HistoryRecord {
	recent := []database.HistoryRecord{}
	if s.history != nil {
		recent = s.history.Recent(limit)
	}
	if s.recorder == nil || (limit <= 0 && len(recent) > 0) || (limit > 0 && len(recent) >= limit) {
		return recent
	}

	storeLimit := limit
	if storeLimit <= 0 {
		storeLimit = storeHistoryLimit
	}
	stored, err := s.recorder.RecentQuestions(ctx, storeLimit)
	if err != nil {
		s.logger.Warn("Failed to load question history from store", zap.Error(err))
		return recent
	}
	if len(stored) <= len(recent) {
		return recent
	}
	return stored
}

// Engine exposes the underlying engine for status endpoints.
func (s *AskService) Engine() *reasoning.Engine {
	return s.engine
}
