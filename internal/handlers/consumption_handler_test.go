// internal/handlers/consumption_handler_test.go
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

func TestConsumptionHandler_Consume(t *testing.T) {
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
			name:      "consumes_stock_with_order_id",
			productID: productID.String(),
			body:      `{"quantity":12,"order_id":"order-42"}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params ports.ConsumeParams) (*ports.ConsumeResult, error) {
						assert.Equal(t, productID, params.ProductID)
						assert.Equal(t, 12, params.Quantity)
						assert.Equal(t, "order-42", params.DedupKey)
						return &ports.ConsumeResult{
							ProductID:   productID,
							Quantity:    12,
							CostOfGoods: decimal.NewFromFloat(26.00),
							Depleted: []ports.Depletion{
								{BatchID: 1, Amount: 10, CostPerItem: decimal.NewFromFloat(2.00)},
								{BatchID: 2, Amount: 2, CostPerItem: decimal.NewFromFloat(3.00)},
							},
						}, nil
					})
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ConsumeResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Len(t, result.Depleted, 2)
				assert.True(t, result.CostOfGoods.Equal(decimal.NewFromFloat(26.00)))
				assert.False(t, result.AlreadyApplied)
			},
		},
		{
			name:      "duplicate_order_returns_prior_result",
			productID: productID.String(),
			body:      `{"quantity":12,"order_id":"order-42"}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(&ports.ConsumeResult{
						ProductID:      productID,
						Quantity:       12,
						CostOfGoods:    decimal.NewFromFloat(26.00),
						AlreadyApplied: true,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var result ports.ConsumeResult
				require.NoError(t, json.Unmarshal(body, &result))
				assert.True(t, result.AlreadyApplied)
			},
		},
		{
			name:      "insufficient_stock_conflicts",
			productID: productID.String(),
			body:      `{"quantity":100}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("requested 100, available 15: %w",
						domain.ErrInsufficientStock))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "rejects_zero_quantity",
			productID:      productID.String(),
			body:           `{"quantity":0}`,
			setupMocks:     func(m *mocks.MockCostingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid_product_id",
			productID:      "not-a-uuid",
			body:           `{"quantity":1}`,
			setupMocks:     func(m *mocks.MockCostingService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "unknown_product",
			productID: productID.String(),
			body:      `{"quantity":1}`,
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockCostingService(ctrl)
			tt.setupMocks(service)
			handler := handlers.NewConsumptionHandler(service, helpers.TestLogger())

			req := httptest.NewRequest("POST",
				"/api/v1/products/"+tt.productID+"/consume",
				bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("id", tt.productID)
			rec := httptest.NewRecorder()

			handler.Consume(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, rec.Body.Bytes())
			}
		})
	}
}
