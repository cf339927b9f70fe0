// internal/handlers/batch_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/internal/handlers"
	"github.com/ammerola/stocklot-be/test/helpers"
	"github.com/ammerola/stocklot-be/test/mocks"
)

func newBatchHandler(t *testing.T) (*handlers.BatchHandler, *mocks.MockCostingService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	service := mocks.NewMockCostingService(ctrl)
	return handlers.NewBatchHandler(service, helpers.TestLogger()), service
}

func TestBatchHandler_AddBatch(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name           string
		productID      string
		body           string
		setupMocks     func(*mocks.MockCostingService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:      "creates_batch",
			productID: productID.String(),
			body:      `{"purchase_date":"2024-03-01T00:00:00Z","quantity_purchased":8,"cost_per_item":"3.25","batch_reference":"INV-2024-0301"}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					AddBatch(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params ports.AddBatchParams) (*domain.Batch, error) {
						assert.Equal(t, productID, params.ProductID)
						assert.Equal(t, 8, params.QuantityPurchased)
						return &domain.Batch{
							ID:                7,
							ProductID:         productID,
							QuantityPurchased: 8,
							QuantityAvailable: 8,
							CostPerItem:       params.CostPerItem,
							BatchReference:    params.BatchReference,
						}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body []byte) {
				var batch domain.Batch
				require.NoError(t, json.Unmarshal(body, &batch))
				assert.Equal(t, int64(7), batch.ID)
				assert.Equal(t, "INV-2024-0301", batch.BatchReference)
			},
		},
		{
			name:           "invalid_product_id",
			productID:      "not-a-uuid",
			body:           `{"quantity_purchased":8}`,
			setupMocks:     func(m *mocks.MockCostingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed_body",
			productID:      productID.String(),
			body:           `{not json`,
			setupMocks:     func(m *mocks.MockCostingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "validation_error_from_service",
			productID: productID.String(),
			body:      `{"quantity_purchased":-1}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					AddBatch(gomock.Any(), gomock.Any()).
					Return(nil, &domain.ValidationError{
						Field:  "quantity_purchased",
						Reason: "quantity_purchased cannot be negative",
					})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "product_not_found",
			productID: productID.String(),
			body:      `{"quantity_purchased":8,"cost_per_item":"1.00"}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					AddBatch(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := newBatchHandler(t)
			tt.setupMocks(service)

			req := httptest.NewRequest("POST",
				"/api/v1/products/"+tt.productID+"/batches",
				bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("id", tt.productID)
			rec := httptest.NewRecorder()

			handler.AddBatch(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, rec.Body.Bytes())
			}
		})
	}
}

func TestBatchHandler_ListBatches(t *testing.T) {
	productID := uuid.New()
	handler, service := newBatchHandler(t)

	service.EXPECT().
		ListBatches(gomock.Any(), productID).
		Return([]domain.Batch{
			{ID: 1, ProductID: productID, QuantityPurchased: 10, QuantityAvailable: 4},
			{ID: 2, ProductID: productID, QuantityPurchased: 5, QuantityAvailable: 5},
		}, nil)

	req := httptest.NewRequest("GET", "/api/v1/products/"+productID.String()+"/batches", nil)
	req.SetPathValue("id", productID.String())
	rec := httptest.NewRecorder()

	handler.ListBatches(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Batches []domain.Batch `json:"batches"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, int64(1), response.Batches[0].ID)
}

func TestBatchHandler_NextBatch(t *testing.T) {
	productID := uuid.New()

	t.Run("returns_next_fifo_batch", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().
			NextBatch(gomock.Any(), productID).
			Return(&domain.Batch{ID: 2, ProductID: productID, QuantityAvailable: 5,
				QuantityPurchased: 5, CostPerItem: decimal.NewFromFloat(3.00)}, nil)

		req := httptest.NewRequest("GET", "/api/v1/products/"+productID.String()+"/batches/next", nil)
		req.SetPathValue("id", productID.String())
		rec := httptest.NewRecorder()

		handler.NextBatch(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var batch domain.Batch
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batch))
		assert.Equal(t, int64(2), batch.ID)
	})

	t.Run("out_of_stock_returns_null", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().NextBatch(gomock.Any(), productID).Return(nil, nil)

		req := httptest.NewRequest("GET", "/api/v1/products/"+productID.String()+"/batches/next", nil)
		req.SetPathValue("id", productID.String())
		rec := httptest.NewRecorder()

		handler.NextBatch(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "null", string(bytes.TrimSpace(rec.Body.Bytes())))
	})
}

func TestBatchHandler_UpdateBatch(t *testing.T) {
	t.Run("updates_batch", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().
			UpdateBatch(gomock.Any(), int64(3), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, params ports.UpdateBatchParams) (*domain.Batch, error) {
				require.NotNil(t, params.CostPerItem)
				return &domain.Batch{ID: 3, CostPerItem: *params.CostPerItem}, nil
			})

		body := `{"cost_per_item":"4.50"}`
		req := httptest.NewRequest("PUT", "/api/v1/batches/3", bytes.NewReader([]byte(body)))
		req.SetPathValue("batchId", "3")
		rec := httptest.NewRecorder()

		handler.UpdateBatch(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects_purchased_below_consumed", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().
			UpdateBatch(gomock.Any(), int64(3), gomock.Any()).
			Return(nil, &domain.ValidationError{
				Field:  "quantity_purchased",
				Reason: "cannot be reduced below 6 units already consumed",
			})

		body := `{"quantity_purchased":5}`
		req := httptest.NewRequest("PUT", "/api/v1/batches/3", bytes.NewReader([]byte(body)))
		req.SetPathValue("batchId", "3")
		rec := httptest.NewRecorder()

		handler.UpdateBatch(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid_batch_id", func(t *testing.T) {
		handler, _ := newBatchHandler(t)

		req := httptest.NewRequest("PUT", "/api/v1/batches/abc", bytes.NewReader([]byte(`{}`)))
		req.SetPathValue("batchId", "abc")
		rec := httptest.NewRecorder()

		handler.UpdateBatch(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBatchHandler_DeleteBatch(t *testing.T) {
	t.Run("deletes_unconsumed_batch", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().DeleteBatch(gomock.Any(), int64(5)).Return(nil)

		req := httptest.NewRequest("DELETE", "/api/v1/batches/5", nil)
		req.SetPathValue("batchId", "5")
		rec := httptest.NewRecorder()

		handler.DeleteBatch(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("consumed_batch_conflicts", func(t *testing.T) {
		handler, service := newBatchHandler(t)
		service.EXPECT().
			DeleteBatch(gomock.Any(), int64(5)).
			Return(fmt.Errorf("batch 5 has 6 units consumed: %w", domain.ErrBatchInUse))

		req := httptest.NewRequest("DELETE", "/api/v1/batches/5", nil)
		req.SetPathValue("batchId", "5")
		rec := httptest.NewRecorder()

		handler.DeleteBatch(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var response map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "batch has consumed units and cannot be deleted", response["error"])
	})
}
