package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/mock"
)

// MockEventService is a mock of the schedule.EventService interface
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) PutRule(ctx context.Context, ruleName, expression, description string) (string, error) {
	args := m.Called(ctx, ruleName, expression, description)
	return args.String(0), args.Error(1)
}

func (m *MockEventService) AddPermission(ctx context.Context, functionName, ruleArn, statementId string) (bool, error) {
	args := m.Called(ctx, functionName, ruleArn, statementId)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventService) PutTarget(ctx context.Context, ruleName, targetId, functionArn string) error {
	args := m.Called(ctx, ruleName, targetId, functionArn)
	return args.Error(0)
}

func (m *MockEventService) ListTargets(ctx context.Context, ruleName string) ([]types.Target, error) {
	args := m.Called(ctx, ruleName)
	return args.Get(0).([]types.Target), args.Error(1)
}
