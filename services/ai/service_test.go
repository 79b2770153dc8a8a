package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/dto"
	"github.com/NazarSenchuk/receipt-processor/interfaces"
	"github.com/NazarSenchuk/receipt-processor/internal/logger"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
)

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{LogLevel: "debug", DevMode: true, Encoder: "console"})
	l.InitLogger()
	return l
}

func newTestService(url string) interfaces.ExtractionService {
	return NewExtractionService(&config.OpenRouterConfig{
		APIKey: "test-key",
		Model:  "test-model",
		URL:    url,
	}, testLogger())
}

func modelResponse(t *testing.T, content string) []byte {
	t.Helper()
	data, err := json.Marshal(dto.ChatCompletionResponse{
		Choices: []dto.Choice{{Message: dto.ResponseMessage{Content: content}}},
	})
	require.NoError(t, err)
	return data
}

func TestExtractReceipt(t *testing.T) {
	var captured dto.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Write(modelResponse(t, `{"merchant_name": "Acme Store", "date": "2026-01-15", "time": "13:37", "total_amount": 12.50, "currency": "USD", "payment_method": "card"}`))
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	require.NotNil(t, fields)

	assert.Equal(t, "Acme Store", *fields.MerchantName)
	assert.Equal(t, "2026-01-15", *fields.Date)
	assert.Equal(t, "13:37", *fields.Time)
	assert.Equal(t, models.Decimal("12.50"), *fields.TotalAmount)
	assert.Equal(t, "USD", *fields.Currency)
	assert.Equal(t, "card", *fields.PaymentMethod)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 1)
	require.Len(t, captured.Messages[0].Content, 2)
	assert.Equal(t, "text", captured.Messages[0].Content[0].Type)
	assert.Equal(t, "image_url", captured.Messages[0].Content[1].Type)
	assert.Contains(t, captured.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,")
}

func TestExtractReceiptFencedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelResponse(t, "Sure, here it is:\n```json\n{\"merchant_name\": \"Acme\", \"total_amount\": 3.99}\n```"))
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	require.NotNil(t, fields)
	assert.Equal(t, "Acme", *fields.MerchantName)
	assert.Equal(t, models.Decimal("3.99"), *fields.TotalAmount)
}

func TestExtractReceiptPartialFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelResponse(t, `{"merchant_name": "Acme"}`))
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	require.NoError(t, err)
	require.NotNil(t, fields)
	assert.Equal(t, "Acme", *fields.MerchantName)
	assert.Nil(t, fields.TotalAmount)
	assert.Nil(t, fields.Currency)
}

func TestExtractReceiptEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(dto.ChatCompletionResponse{
			Error: &dto.APIError{Message: "rate limited", Code: 429},
		})
		w.Write(data)
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	assert.Error(t, err)
	assert.Nil(t, fields)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestExtractReceiptEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	assert.Error(t, err)
	assert.Nil(t, fields)
}

func TestExtractReceiptHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	assert.Error(t, err)
	assert.Nil(t, fields)
}

func TestExtractReceiptNonJSONContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(modelResponse(t, "I could not read the receipt, sorry."))
	}))
	defer srv.Close()

	fields, err := newTestService(srv.URL).ExtractReceipt(context.Background(), []byte("image bytes"))
	assert.Error(t, err)
	assert.Nil(t, fields)
}
