package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"coinsage/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ModelRunner invokes the external prediction model.
type ModelRunner interface {
	Run(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error)
}

// CommandRunner runs the model as a subprocess. Parameters are passed
// through a uniquely named temp file appended as the final argument, so
// concurrent invocations never share filesystem state. The file is removed
// on every exit path.
type CommandRunner struct {
	argv    []string
	timeout time.Duration
	tracer  trace.Tracer
}

func NewCommandRunner(tracer trace.Tracer, argv []string, timeout time.Duration) *CommandRunner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CommandRunner{argv: argv, timeout: timeout, tracer: tracer}
}

func (r *CommandRunner) Run(ctx context.Context, req domain.PredictionRequest) (*domain.PredictionResult, error) {
	ctx, span := r.tracer.Start(ctx, "predictor.run-model")
	defer span.End()
	span.SetAttributes(attribute.Int("days", req.Days))

	if len(r.argv) == 0 {
		return nil, &domain.ConfigurationError{Stage: "predictor", Key: "PREDICT_COMMAND"}
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "predict-params-*.json")
	if err != nil {
		return nil, fmt.Errorf("create param file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(params); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write param file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close param file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := append(append([]string(nil), r.argv[1:]...), tmp.Name())
	cmd := exec.CommandContext(ctx, r.argv[0], args...)
	out, err := cmd.Output()
	if err != nil {
		detail := err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			detail = fmt.Sprintf("%v: %s", err, truncateBytes(exitErr.Stderr, 256))
		}
		return nil, &domain.UpstreamError{Stage: "predictor", Detail: detail}
	}

	result, err := parseModelOutput(out)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("predicted_days", len(result.Dates)))
	return result, nil
}

// parseModelOutput decodes the model's stdout, tolerating log noise around
// the JSON object and both key spellings the model contract allows.
func parseModelOutput(out []byte) (*domain.PredictionResult, error) {
	raw := extractJSONObject(string(out))
	if raw == "" {
		return nil, &domain.ParseError{Stage: "predictor", Detail: "no JSON object in model output"}
	}

	var payload struct {
		Dates           []string  `json:"dates"`
		TestDates       []string  `json:"test_dates"`
		Prices          []float64 `json:"prices"`
		PredictedPrices []float64 `json:"predicted_prices"`
		CurrentPrice    *float64  `json:"current_price"`
		ActualPrices    []float64 `json:"actual_prices"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &domain.ParseError{Stage: "predictor", Detail: fmt.Sprintf("decode model output: %v", err)}
	}

	dates := payload.Dates
	if len(dates) == 0 {
		dates = payload.TestDates
	}
	prices := payload.Prices
	if len(prices) == 0 {
		prices = payload.PredictedPrices
	}
	current := 0.0
	switch {
	case payload.CurrentPrice != nil:
		current = *payload.CurrentPrice
	case len(payload.ActualPrices) > 0:
		current = payload.ActualPrices[0]
	}

	result := &domain.PredictionResult{
		Dates:        dates,
		Prices:       prices,
		CurrentPrice: current,
		Source:       domain.SourceModel,
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
