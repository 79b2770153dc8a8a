package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/dto"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	apperrors "github.com/NazarSenchuk/receipt-processor/internal/errors"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
	"github.com/NazarSenchuk/receipt-processor/internal/tracing"
)

const receiptPrompt = `Extract receipt information and return ONLY JSON with this structure:
{
  "merchant_name": "store name",
  "date": "YYYY-MM-DD",
  "time": "HH:MM",
  "total_amount": 0.00,
  "currency": "USD/EUR/etc",
  "payment_method": "cash/card/etc"
}
No explanations, no markdown, just pure JSON.`

type aiService struct {
	cfg        *config.OpenRouterConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewExtractionService(cfg *config.OpenRouterConfig, log logger.Logger) interfaces.ExtractionService {
	return &aiService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}
}

// ExtractReceipt submits one image to the vision model and parses the
// structured fields out of the response. Every failure mode collapses to a
// nil result so the caller can keep processing sibling attachments.
func (s *aiService) ExtractReceipt(ctx context.Context, image []byte) (*models.ReceiptFields, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.ExtractReceipt")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	encoded := base64.StdEncoding.EncodeToString(image)

	request := dto.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []dto.ChatMessage{
			{
				Role: "user",
				Content: []dto.ContentPart{
					{Type: "text", Text: receiptPrompt},
					{Type: "image_url", ImageURL: &dto.ImageURL{URL: "data:image/png;base64," + encoded}},
				},
			},
		},
		MaxTokens:   500,
		Temperature: 0.1,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.URL, bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "Receipt Processor")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return nil, err
	}

	var response dto.ChatCompletionResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	if response.Error != nil {
		err = errors.Errorf("model endpoint error: %s", response.Error.Message)
		tracing.TraceErr(span, err)
		return nil, err
	}

	if len(response.Choices) == 0 {
		tracing.TraceErr(span, apperrors.ErrEmptyModelResponse)
		return nil, apperrors.ErrEmptyModelResponse
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	fields, err := parseReceiptContent(content)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logger.Warnf("Failed to parse model content: %v", err)
		return nil, err
	}

	tracing.LogObjectAsJson(span, "fields", fields)
	return fields, nil
}

func parseReceiptContent(content string) (*models.ReceiptFields, error) {
	cleaned := ExtractJSONPayload(content)

	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "model content is not valid JSON")
	}

	normalized, ok := models.NormalizeNumbers(payload).(map[string]interface{})
	if !ok {
		return nil, errors.New("model content is not a JSON object")
	}

	return models.ReceiptFieldsFromMap(normalized), nil
}
