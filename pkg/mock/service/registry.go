package mock

import (
	"context"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/mock"
)

// MockRegistryService is a mock of the release.RegistryService interface
type MockRegistryService struct {
	mock.Mock
}

func (m *MockRegistryService) PutRepository(ctx context.Context, repositoryName string) (bool, error) {
	args := m.Called(ctx, repositoryName)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryService) Token(ctx context.Context, registryId string) (string, error) {
	args := m.Called(ctx, registryId)
	return args.String(0), args.Error(1)
}

func (m *MockRegistryService) ImagePublished(ctx context.Context, repositoryName, tag string) error {
	args := m.Called(ctx, repositoryName, tag)
	return args.Error(0)
}

// MockBuildService is a mock of the release.BuildService interface
type MockBuildService struct {
	mock.Mock
}

func (m *MockBuildService) Login(ctx context.Context, registryUrl, username, password string) error {
	args := m.Called(ctx, registryUrl, username, password)
	return args.Error(0)
}

func (m *MockBuildService) Build(ctx context.Context, path, platform string, labels map[string]string, tags []string) error {
	args := m.Called(ctx, path, platform, labels, tags)
	return args.Error(0)
}

func (m *MockBuildService) Push(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockBuildService) InspectByTag(ctx context.Context, registryUrl, repository, tag string) (types.ImageInspect, error) {
	args := m.Called(ctx, registryUrl, repository, tag)
	return args.Get(0).(types.ImageInspect), args.Error(1)
}
