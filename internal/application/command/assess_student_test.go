package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeModel struct {
	ready       bool
	risk        prediction.RiskCategory
	confidence  float64
	classifyErr error

	mu       sync.Mutex
	lastSeen student.Record
}

func (m *fakeModel) Ready() bool { return m.ready }

func (m *fakeModel) Classify(rec student.Record) (*RiskClassification, error) {
	m.mu.Lock()
	m.lastSeen = rec
	m.mu.Unlock()

	if m.classifyErr != nil {
		return nil, m.classifyErr
	}
	return &RiskClassification{
		Vector:        []float64{1, 2, 3},
		ClassIndex:    0,
		Risk:          m.risk,
		Confidence:    m.confidence,
		Probabilities: map[string]float64{string(m.risk): m.confidence},
	}, nil
}

func (m *fakeModel) Explain(vector []float64, classIdx int) ([]prediction.Attribution, bool) {
	return []prediction.Attribution{{Feature: "average_grade", Importance: 0.9}}, false
}

type fakeAdvice struct {
	text string
	err  error

	mu      sync.Mutex
	prompts []string
}

func (a *fakeAdvice) Generate(ctx context.Context, prompt string) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()
	return a.text, a.err
}

type fakeRepo struct {
	saveErr error

	mu    sync.Mutex
	saved []*prediction.Assessment
}

func (r *fakeRepo) Save(ctx context.Context, a *prediction.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, a)
	return nil
}

func (r *fakeRepo) ListRecent(ctx context.Context, limit int) ([]*prediction.Assessment, error) {
	return nil, nil
}

func (r *fakeRepo) GradeAverages(ctx context.Context) (*prediction.GradeAverages, error) {
	return nil, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *fakePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) byType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func validRecord() student.Record {
	return student.Record{
		School: "GP", Sex: "F", Address: "U", Famsize: "GT3", Pstatus: "T",
		Mjob: "teacher", Fjob: "services", Reason: "course", Guardian: "mother",
		Schoolsup: "no", Famsup: "yes", Paid: "no", Activities: "yes",
		Nursery: "yes", Higher: "yes", Internet: "yes", Romantic: "no",
		Age: 17, Medu: 3, Fedu: 2, Traveltime: 1, Studytime: 2, Failures: 0,
		Famrel: 4, Freetime: 3, Goout: 2, Dalc: 1, Walc: 1, Health: 5,
		Absences: 4, G1: 12, G2: 13,
	}
}

type pipeline struct {
	model     *fakeModel
	advice    *fakeAdvice
	repo      *fakeRepo
	publisher *fakePublisher
	handler   *AssessStudentHandler
}

func newPipeline() *pipeline {
	p := &pipeline{
		model:     &fakeModel{ready: true, risk: prediction.RiskMedium, confidence: 0.7},
		advice:    &fakeAdvice{text: "Keep a steady study schedule."},
		repo:      &fakeRepo{},
		publisher: &fakePublisher{},
	}
	p.handler = NewAssessStudentHandler(
		p.model, p.advice, p.repo, p.publisher, nil,
		DefaultAssessStudentHandlerConfig())
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHandle_HappyPath(t *testing.T) {
	p := newPipeline()

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AssessmentID)
	assert.Equal(t, StageResponded, res.Stage)
	assert.Equal(t, prediction.RiskMedium, res.Result.Risk)
	assert.Equal(t, 0.7, res.Result.Confidence)
	assert.Equal(t, "Keep a steady study schedule.", res.Result.Advice)
	assert.False(t, res.Result.Degraded())

	// Medium risk lands in the 10..13 band, interpolated by confidence.
	assert.GreaterOrEqual(t, res.Result.EstimatedGrade, 10)
	assert.LessOrEqual(t, res.Result.EstimatedGrade, 13)
}

func TestHandle_DerivedFeaturesReachModel(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	p.model.mu.Lock()
	defer p.model.mu.Unlock()
	assert.Equal(t, 12.5, p.model.lastSeen.AverageGrade)
	assert.Equal(t, 1, p.model.lastSeen.GradeChange)
}

func TestHandle_RejectsInvalidRecord(t *testing.T) {
	p := newPipeline()

	rec := validRecord()
	rec.Age = 50

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: rec})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	// The model is never consulted for rejected input.
	p.model.mu.Lock()
	defer p.model.mu.Unlock()
	assert.Empty(t, p.model.lastSeen.School)
}

func TestHandle_RejectsOversizedCustomPrompt(t *testing.T) {
	p := newPipeline()

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{
		Record:       validRecord(),
		CustomPrompt: string(long),
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestHandle_RejectionPublishesEvent(t *testing.T) {
	p := newPipeline()

	rec := validRecord()
	rec.G1 = 25

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: rec})
	require.Error(t, err)

	rejected := p.publisher.byType(shared.EventAssessmentRejected)
	require.Len(t, rejected, 1)
	reason, _ := rejected[0].Payload()["reason"].(string)
	assert.Contains(t, reason, "G1")

	assert.Empty(t, p.publisher.byType(shared.EventAssessmentCompleted))
}

func TestHandle_ModelNotReady(t *testing.T) {
	p := newPipeline()
	p.model.ready = false

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrModelUnavailable)
}

func TestHandle_ClassificationFailure(t *testing.T) {
	p := newPipeline()
	p.model.classifyErr = shared.ErrEncodersNotLoaded

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrEncodingUnavailable)
}

func TestHandle_AdviceErrorDegradesToFallback(t *testing.T) {
	p := newPipeline()
	p.advice.text = ""
	p.advice.err = errors.New("generator down")

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	assert.True(t, res.Result.AdviceFallback)
	assert.True(t, res.Result.Degraded())
	assert.NotEmpty(t, res.Result.Advice)
	assert.Contains(t, res.Result.Advice, "Next steps")
}

func TestHandle_EmptyAdviceDegradesToFallback(t *testing.T) {
	p := newPipeline()
	p.advice.text = ""

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	assert.True(t, res.Result.AdviceFallback)
	assert.NotEmpty(t, res.Result.Advice)
}

func TestHandle_NilAdviceGeneratorUsesFallback(t *testing.T) {
	p := newPipeline()
	p.handler = NewAssessStudentHandler(
		p.model, nil, p.repo, p.publisher, nil,
		DefaultAssessStudentHandlerConfig())

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	assert.True(t, res.Result.AdviceFallback)
	assert.NotEmpty(t, res.Result.Advice)
}

func TestHandle_CustomPromptFlowsIntoGeneratorPrompt(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{
		Record:       validRecord(),
		CustomPrompt: "<b>focus on</b> exam preparation",
	})
	require.NoError(t, err)

	p.advice.mu.Lock()
	defer p.advice.mu.Unlock()
	require.Len(t, p.advice.prompts, 1)
	assert.Contains(t, p.advice.prompts[0], "focus on exam preparation")
	assert.NotContains(t, p.advice.prompts[0], "<b>")
}

func TestHandle_HighRiskPublishesAlertEvent(t *testing.T) {
	p := newPipeline()
	p.model.risk = prediction.RiskHigh
	p.model.confidence = 0.9

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)
	assert.Equal(t, prediction.RiskHigh, res.Result.Risk)

	highRisk := p.publisher.byType(shared.EventHighRiskDetected)
	require.Len(t, highRisk, 1)
	assert.Equal(t, res.AssessmentID, highRisk[0].AggregateID())

	completed := p.publisher.byType(shared.EventAssessmentCompleted)
	assert.Len(t, completed, 1)
}

func TestHandle_MediumRiskDoesNotAlert(t *testing.T) {
	p := newPipeline()

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	assert.Empty(t, p.publisher.byType(shared.EventHighRiskDetected))
	assert.Len(t, p.publisher.byType(shared.EventAssessmentCompleted), 1)
}

func TestHandle_PersistsAssessment(t *testing.T) {
	p := newPipeline()

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)

	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()
	require.Len(t, p.repo.saved, 1)
	saved := p.repo.saved[0]
	assert.Equal(t, res.AssessmentID, saved.ID)
	assert.Equal(t, 12, saved.G1)
	assert.Equal(t, 13, saved.G2)
	assert.Equal(t, prediction.RiskMedium, saved.Risk)
}

func TestHandle_SaveFailureDoesNotFailAssessment(t *testing.T) {
	p := newPipeline()
	p.repo.saveErr = errors.New("database down")

	_, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	assert.NoError(t, err)
}

func TestHandle_NilOptionalDependencies(t *testing.T) {
	p := newPipeline()
	p.handler = NewAssessStudentHandler(
		p.model, nil, nil, nil, nil,
		AssessStudentHandlerConfig{})

	res, err := p.handler.Handle(context.Background(), AssessStudentCommand{Record: validRecord()})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Result.Advice)
}
