package release

import (
	"context"
	"fmt"
	"testing"

	"github.com/trialdata/harvester-deploy/pkg/convention/config"
	servicemock "github.com/trialdata/harvester-deploy/pkg/mock/service"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	dockertypes "github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRelease(t *testing.T) {
	ctx := context.Background()

	cfg := config.FromOptions(config.Options{BuildContext: t.TempDir()}, "123456789012")
	imageUri := cfg.ImageUri()

	tests := []struct {
		name  string
		setup func(*servicemock.MockRegistryService, *servicemock.MockBuildService)
		test  func(*testing.T, *servicemock.MockRegistryService, *servicemock.MockBuildService)
	}{
		{
			name: "EnsureRepository reports creation on a fresh registry.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mrs.On("PutRepository", mock.Anything, "ctis-harvester").Return(true, nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				created, err := releases.EnsureRepository(ctx)

				assert.NoError(t, err)
				assert.True(t, created)
			},
		},
		{
			name: "EnsureRepository reports the benign already-exists case.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mrs.On("PutRepository", mock.Anything, "ctis-harvester").Return(false, nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				created, err := releases.EnsureRepository(ctx)

				assert.NoError(t, err)
				assert.False(t, created)
			},
		},
		{
			name: "Build targets exactly one platform, tags for the remote repository, and inspects the result.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mbs.On("Build", mock.Anything, cfg.BuildContext, "linux/amd64", mock.Anything, []string{imageUri}).Return(nil)
				mbs.On("InspectByTag", mock.Anything, cfg.Registry.Url, "ctis-harvester", "latest").Return(dockertypes.ImageInspect{Os: "linux", Architecture: "amd64"}, nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				got, err := releases.Build(ctx)

				assert.NoError(t, err)
				assert.Equal(t, imageUri, got.Uri)
				assert.Equal(t, lambdatypes.ArchitectureX8664, got.Architecture)
				mbs.AssertExpectations(t)
			},
		},
		{
			name: "Build rejects an image whose platform disagrees with the function architecture.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mbs.On("Build", mock.Anything, cfg.BuildContext, "linux/amd64", mock.Anything, []string{imageUri}).Return(nil)
				mbs.On("InspectByTag", mock.Anything, cfg.Registry.Url, "ctis-harvester", "latest").Return(dockertypes.ImageInspect{Os: "linux", Architecture: "arm64"}, nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				_, err := releases.Build(ctx)

				assert.ErrorContains(t, err, "linux/arm64")
				mbs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
			},
		},
		{
			name: "Build failure surfaces before any registry interaction.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mbs.On("Build", mock.Anything, cfg.BuildContext, "linux/amd64", mock.Anything, []string{imageUri}).Return(fmt.Errorf("exit status 1"))
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				_, err := releases.Build(ctx)

				assert.Error(t, err)
				mbs.AssertNotCalled(t, "InspectByTag", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				mbs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
				mrs.AssertNotCalled(t, "Token", mock.Anything, mock.Anything)
			},
		},
		{
			name: "Authenticate exchanges the registry token for a docker session.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mrs.On("Token", mock.Anything, "123456789012").Return("sekret", nil)
				mbs.On("Login", mock.Anything, cfg.Registry.Url, "AWS", "sekret").Return(nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				assert.NoError(t, releases.Authenticate(ctx))
				mbs.AssertExpectations(t)
			},
		},
		{
			name: "Authenticate failure is terminal, no login attempted without a token.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mrs.On("Token", mock.Anything, "123456789012").Return("", fmt.Errorf("UnrecognizedClientException"))
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				assert.Error(t, releases.Authenticate(ctx))
				mbs.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "Publish pushes the tagged image and confirms the tag in the registry.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mbs.On("Push", mock.Anything, imageUri).Return(nil)
				mrs.On("ImagePublished", mock.Anything, "ctis-harvester", "latest").Return(nil)
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				assert.NoError(t, releases.Publish(ctx, Release{Uri: imageUri}))
				mrs.AssertExpectations(t)
			},
		},
		{
			name: "Publish surfaces a push the registry never recorded.",
			setup: func(mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				mbs.On("Push", mock.Anything, imageUri).Return(nil)
				mrs.On("ImagePublished", mock.Anything, "ctis-harvester", "latest").Return(fmt.Errorf("tag latest not found in repository ctis-harvester after push"))
			},
			test: func(t *testing.T, mrs *servicemock.MockRegistryService, mbs *servicemock.MockBuildService) {
				releases := FromServices(cfg, mrs, mbs)
				assert.Error(t, releases.Publish(ctx, Release{Uri: imageUri}))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mrs := &servicemock.MockRegistryService{}
			mbs := &servicemock.MockBuildService{}

			if tc.setup != nil {
				tc.setup(mrs, mbs)
			}

			tc.test(t, mrs, mbs)
		})
	}
}

func TestPlatformFor(t *testing.T) {
	platform, arch, err := platformFor("arm64")
	assert.NoError(t, err)
	assert.Equal(t, "linux/arm64", platform)
	assert.Equal(t, lambdatypes.ArchitectureArm64, arch)

	_, _, err = platformFor("s390x")
	assert.Error(t, err)
}
