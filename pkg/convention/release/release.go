package release

import (
	"context"
	"fmt"

	"github.com/trialdata/harvester-deploy/internal/util"
	"github.com/trialdata/harvester-deploy/pkg/convention/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/docker/docker/api/types"
	"github.com/rs/zerolog/log"
)

// The ECR docker credential username is fixed, only the token varies.
const registryUsername = "AWS"

type RegistryService interface {
	PutRepository(ctx context.Context, repositoryName string) (bool, error)
	Token(ctx context.Context, registryId string) (string, error)
	ImagePublished(ctx context.Context, repositoryName, tag string) error
}

type BuildService interface {
	Login(ctx context.Context, registryUrl, username, password string) error
	Build(ctx context.Context, path, platform string, labels map[string]string, tags []string) error
	Push(ctx context.Context, tag string) error
	InspectByTag(ctx context.Context, registryUrl, repository, tag string) (types.ImageInspect, error)
}

type Release struct {
	Uri          string
	Architecture lambdatypes.Architecture
	Sha          string
}

type Services struct {
	Registry RegistryService
	Build    BuildService
}

type Convention struct {
	Config  config.Config
	Service Services
}

func FromServices(c config.Config, r RegistryService, b BuildService) Convention {
	return Convention{
		Config: c,
		Service: Services{
			Registry: r,
			Build:    b,
		},
	}
}

// EnsureRepository creates the image repository if absent. The bool is
// true when this run created it.
func (c Convention) EnsureRepository(ctx context.Context) (bool, error) {
	ctx, span := otel.Tracer("").Start(ctx, "release.EnsureRepository")
	defer span.End()

	span.SetAttributes(attribute.String("repository-name", c.Config.Repository.Name))

	created, err := c.Service.Registry.PutRepository(ctx, c.Config.Repository.Name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	return created, nil
}

// Build produces the single-architecture harvester image, tagged for the
// remote repository. Nothing registry-side happens here; a failed build
// aborts before any push.
func (c Convention) Build(ctx context.Context) (Release, error) {
	ctx, span := otel.Tracer("").Start(ctx, "release.Build")
	defer span.End()

	platform, arch, err := platformFor(c.Config.Function.Architecture)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Release{}, err
	}

	labels := map[string]string{
		"org.opencontainers.image.title": c.Config.Repository.Name,
	}

	if c.Config.Git.Sha != "" {
		labels["org.opencontainers.image.revision"] = c.Config.Git.Sha
	}

	span.SetAttributes(
		attribute.String("build-context", c.Config.BuildContext),
		attribute.String("platform", platform),
		attribute.String("image-uri", c.Config.ImageUri()),
	)

	if err := c.Service.Build.Build(ctx, c.Config.BuildContext, platform, labels, []string{c.Config.ImageUri()}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Release{}, err
	}

	inspect, err := c.Service.Build.InspectByTag(ctx, c.Config.Registry.Url, c.Config.Repository.Name, c.Config.Repository.Tag)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Release{}, err
	}

	// A mismatched image would only fail at invoke time, long after this
	// run exits.
	if built := inspect.Os + "/" + inspect.Architecture; built != platform {
		err := fmt.Errorf("built image is %s, function requires %s", built, platform)
		span.SetStatus(codes.Error, err.Error())
		return Release{}, err
	}

	if c.Config.Git.Dirty {
		log.Warn().Str("sha", util.ShortSha(c.Config.Git.Sha)).Msg("build context has uncommitted changes")
	}

	return Release{
		Uri:          c.Config.ImageUri(),
		Architecture: arch,
		Sha:          c.Config.Git.Sha,
	}, nil
}

// Authenticate exchanges caller credentials for a registry session. The
// pipeline cannot proceed past this point without push access.
func (c Convention) Authenticate(ctx context.Context) error {
	ctx, span := otel.Tracer("").Start(ctx, "release.Authenticate")
	defer span.End()

	token, err := c.Service.Registry.Token(ctx, c.Config.Registry.Id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := c.Service.Build.Login(ctx, c.Config.Registry.Url, registryUsername, token); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// Publish pushes the built image to the remote repository, then reads
// the tag back from the registry to confirm it landed.
func (c Convention) Publish(ctx context.Context, release Release) error {
	ctx, span := otel.Tracer("").Start(ctx, "release.Publish")
	defer span.End()

	span.SetAttributes(attribute.String("image-uri", release.Uri))

	if err := c.Service.Build.Push(ctx, release.Uri); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := c.Service.Registry.ImagePublished(ctx, c.Config.Repository.Name, c.Config.Repository.Tag); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func platformFor(architecture string) (string, lambdatypes.Architecture, error) {
	switch architecture {
	case "x86_64", "amd64":
		return "linux/amd64", lambdatypes.ArchitectureX8664, nil
	case "arm64":
		return "linux/arm64", lambdatypes.ArchitectureArm64, nil
	default:
		return "", "", fmt.Errorf("unsupported architecture %s", architecture)
	}
}
