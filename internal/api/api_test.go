package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/audit"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/guard"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/metrics"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/models"
	"github.com/povarna/generative-ai-agents/guard-agent/internal/validator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type answerClassifier string

func (a answerClassifier) Classify(ctx context.Context, systemPrompt string, userText string, settings llm.ModelSettings) (string, error) {
	return string(a), nil
}

func setupTestAPI(t *testing.T, onFail guard.OnFailFunc) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	words, err := validator.NewWordListValidator("toxic-words", validator.DefaultSearchWords, &logger)
	require.NoError(t, err)
	pii, err := validator.NewPIIValidator(validator.YesNoOptions{
		Name:   "detect-pii",
		Prompt: validator.PIIPrompt,
	}, validator.DefaultPIIPatterns(), answerClassifier("no"), &logger)
	require.NoError(t, err)

	recorder, err := audit.NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { recorder.Close() })

	m := metrics.New()
	g, err := guard.New([]guard.Entry{
		{Validator: words, Descriptor: guard.Descriptor{Type: "toxic-words", DataType: "string", OnFail: "custom"}, OnFail: onFail},
		{Validator: pii, Descriptor: guard.Descriptor{Type: "detect-pii", DataType: "string", OnFail: "noop"}},
	}, guard.WithRecorder(recorder), guard.WithMetrics(m), guard.WithLogger(&logger))
	require.NoError(t, err)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, api.NewHandler(g, recorder, &logger))
	api.RegisterOpenAPI(container)
	api.RegisterMetrics(container, m.Handler())
	return container
}

func postJSON(t *testing.T, container *restful.Container, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", restful.MIME_JSON)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func get(container *restful.Container, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := get(container, "/api/v1/health")

	require.Equal(t, http.StatusOK, recorder.Code)
	var response api.HealthResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestAPI_ListValidators(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := get(container, "/api/v1/validators")

	require.Equal(t, http.StatusOK, recorder.Code)
	var response api.ValidatorsResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Validators, 2)
	assert.Equal(t, "toxic-words", response.Validators[0].Name)
	assert.Equal(t, "detect-pii", response.Validators[1].Name)
}

func TestAPI_Validate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectOutcome models.Outcome
		expectMessage string
	}{
		{
			name:          "clean text passes",
			text:          "What a lovely day.",
			expectOutcome: models.OutcomePass,
		},
		{
			name:          "toxic word fails",
			text:          "what a booger",
			expectOutcome: models.OutcomeFail,
			expectMessage: "toxic-words: Mentioned toxic words: booger",
		},
		{
			name:          "email fails via regex",
			text:          "write to jane@example.com",
			expectOutcome: models.OutcomeFail,
			expectMessage: "detect-pii: Potential PII detected (regex: email)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container := setupTestAPI(t, guard.Noop)

			recorder := postJSON(t, container, "/api/v1/validate", models.ValidationRequest{
				EventID: "evt-1",
				Text:    tt.text,
			})

			require.Equal(t, http.StatusOK, recorder.Code)
			var result models.GuardResult
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
			assert.Equal(t, "evt-1", result.ID)
			assert.Equal(t, tt.expectOutcome, result.Outcome)
			assert.Equal(t, tt.expectMessage, result.Message)
			assert.Len(t, result.Results, 2)
		})
	}
}

func TestAPI_Validate_ExceptionPolicyReturns422(t *testing.T) {
	container := setupTestAPI(t, guard.Exception)

	recorder := postJSON(t, container, "/api/v1/validate", models.ValidationRequest{
		EventID: "evt-2",
		Text:    "butt",
	})

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	var result models.GuardResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, models.OutcomeFail, result.Outcome)
	assert.Equal(t, "toxic-words: Mentioned toxic words: butt", result.Message)
}

func TestAPI_Validate_FixPolicyRedacts(t *testing.T) {
	container := setupTestAPI(t, guard.Fix)

	recorder := postJSON(t, container, "/api/v1/validate", models.ValidationRequest{Text: "booger"})

	require.Equal(t, http.StatusOK, recorder.Code)
	var result models.GuardResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, guard.RedactedValue, result.Output)
	assert.NotEmpty(t, result.ID)
}

func TestAPI_Validate_InvalidBody(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", restful.MIME_JSON)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, http.StatusBadRequest, response.Code)
}

func TestAPI_Validate_UnknownValidatorInRequest(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := postJSON(t, container, "/api/v1/validate", models.ValidationRequest{
		Text:       "hello",
		Validators: []string{"does-not-exist"},
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAPI_ValidateSingle(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := postJSON(t, container, "/api/v1/validate/detect-pii", models.ValidationRequest{
		Text: "call 555-123-4567",
	})

	require.Equal(t, http.StatusOK, recorder.Code)
	var result models.GuardResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Results, 1)
	assert.Equal(t, "detect-pii", result.Results[0].Validator)
	assert.Equal(t, models.OutcomeFail, result.Outcome)
}

func TestAPI_ValidateSingle_NotFound(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := postJSON(t, container, "/api/v1/validate/nope", models.ValidationRequest{Text: "hello"})

	require.Equal(t, http.StatusNotFound, recorder.Code)
	var response middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Contains(t, response.Message, "validator not found")
}

func TestAPI_Audit(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	postJSON(t, container, "/api/v1/validate", models.ValidationRequest{EventID: "a", Text: "hello"})
	postJSON(t, container, "/api/v1/validate", models.ValidationRequest{EventID: "b", Text: "booger"})

	recorder := get(container, "/api/v1/audit?limit=1")

	require.Equal(t, http.StatusOK, recorder.Code)
	var response api.AuditResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Len(t, response.Results, 1)
	assert.Equal(t, "b", response.Results[0].ID)
}

func TestAPI_Audit_InvalidLimit(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)

	recorder := get(container, "/api/v1/audit?limit=zero")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestAPI_OpenAPIAndMetrics(t *testing.T) {
	container := setupTestAPI(t, guard.Noop)
	postJSON(t, container, "/api/v1/validate", models.ValidationRequest{Text: "hello"})

	doc := get(container, api.OpenAPIPath)
	require.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), "Guard Agent API")
	assert.Contains(t, doc.Body.String(), "/api/v1/validate/{validator_name}")

	m := get(container, "/metrics")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "guard_validations_total")
}
