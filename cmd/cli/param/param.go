package param

// GlobalOpts are the caller-facing configuration surface. Every field
// has a documented default; flags win over environment variables.
type GlobalOpts struct {
	Region     string `arg:"--region,env:HARVESTER_REGION" help:"deployment region" default:"eu-west-1"`
	Function   string `arg:"--function,env:HARVESTER_FUNCTION" help:"compute function name" default:"ctis-harvester"`
	Repository string `arg:"--repository,env:HARVESTER_REPOSITORY" help:"image repository name" default:"ctis-harvester"`
	Tag        string `arg:"--tag,env:HARVESTER_TAG" help:"image tag" default:"latest"`
	Bucket     string `arg:"--bucket,env:HARVESTER_BUCKET" help:"export bucket passed to the workload" default:"ctis-harvester-exports"`
	Context    string `arg:"--context,env:HARVESTER_CONTEXT" help:"image build context" default:"."`
	Schedule   string `arg:"--schedule,env:HARVESTER_SCHEDULE" help:"cron() or rate() trigger expression" default:"cron(0 6 * * ? *)"`
}

type Deploy struct{}

type Config struct{}
