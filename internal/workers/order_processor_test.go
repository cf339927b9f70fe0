// internal/workers/order_processor_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stocklot-be/internal/core/domain"
	"github.com/ammerola/stocklot-be/internal/core/ports"
	"github.com/ammerola/stocklot-be/internal/workers"
	"github.com/ammerola/stocklot-be/test/helpers"
	"github.com/ammerola/stocklot-be/test/mocks"
)

func orderTask(t *testing.T, payload workers.OrderPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(workers.TypeOrderProcess, data)
}

func TestOrderProcessor_ProcessOrder(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name          string
		task          func(t *testing.T) *asynq.Task
		setupMocks    func(*mocks.MockCostingService)
		expectedError bool
		skipRetry     bool
	}{
		{
			name: "fulfills_order",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					OrderID:   "order-100",
					ProductID: productID,
					Quantity:  3,
				})
			},
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), ports.ConsumeParams{
						ProductID: productID,
						Quantity:  3,
						DedupKey:  "order-100",
					}).
					Return(&ports.ConsumeResult{
						ProductID:   productID,
						Quantity:    3,
						CostOfGoods: decimal.NewFromFloat(6.00),
					}, nil)
			},
		},
		{
			name: "duplicate_order_is_a_success",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					OrderID:   "order-100",
					ProductID: productID,
					Quantity:  3,
				})
			},
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(&ports.ConsumeResult{AlreadyApplied: true}, nil)
			},
		},
		{
			name: "insufficient_stock_skips_retry",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					OrderID:   "order-101",
					ProductID: productID,
					Quantity:  50,
				})
			},
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("requested 50, available 3: %w",
						domain.ErrInsufficientStock))
			},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name: "unknown_product_skips_retry",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					OrderID:   "order-102",
					ProductID: productID,
					Quantity:  1,
				})
			},
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrNotFound)
			},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name: "transient_error_is_retryable",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					OrderID:   "order-103",
					ProductID: productID,
					Quantity:  1,
				})
			},
			setupMocks: func(m *mocks.MockCostingService) {
				m.EXPECT().
					Consume(gomock.Any(), gomock.Any()).
					Return(nil, fmt.Errorf("connection reset"))
			},
			expectedError: true,
			skipRetry:     false,
		},
		{
			name: "malformed_payload_skips_retry",
			task: func(t *testing.T) *asynq.Task {
				return asynq.NewTask(workers.TypeOrderProcess, []byte("{not json"))
			},
			setupMocks:    func(m *mocks.MockCostingService) {},
			expectedError: true,
			skipRetry:     true,
		},
		{
			name: "missing_order_id_skips_retry",
			task: func(t *testing.T) *asynq.Task {
				return orderTask(t, workers.OrderPayload{
					ProductID: productID,
					Quantity:  1,
				})
			},
			setupMocks:    func(m *mocks.MockCostingService) {},
			expectedError: true,
			skipRetry:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockCostingService(ctrl)
			tt.setupMocks(service)

			processor := workers.NewOrderProcessor(service, helpers.TestLogger())
			err := processor.ProcessOrder(context.Background(), tt.task(t))

			if tt.expectedError {
				require.Error(t, err)
				assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
