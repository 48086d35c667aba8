package generators

import (
	"context"
	"math/rand"
	"path"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/projectfs"
	"go.eggybyte.com/stackgen/internal/schema"
	"go.eggybyte.com/stackgen/internal/templates"
	"go.eggybyte.com/stackgen/internal/typemap"
)

// PubspecDependencies are added to the Flutter project after it is created.
var PubspecDependencies = []projectfs.Dependency{
	{Name: "http", Version: "^1.1.0"},
	{Name: "provider", Version: "^6.0.5"},
}

// Pipeline performs one generation run: render every selected target in
// memory, optionally bootstrap the base projects, write, then patch the files
// the bootstrap tools created.
//
// Parameters:
//   - fs: Output file system
//   - runner: External command runner used by bootstrap steps
//   - loader: Template loader shared by all emitters
//   - targets: Selected targets, always run in backend, frontend, mobile order
//
// Concurrency:
//   - One Run at a time per Pipeline
type Pipeline struct {
	fs        *projectfs.ProjectFS
	runner    CommandRunner
	loader    *templates.Loader
	logger    log.Logger
	targets   []typemap.Target
	bootstrap bool
	keepGoing bool
	newRunID  func() string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTargets restricts the run to the given targets.
func WithTargets(targets ...typemap.Target) PipelineOption {
	return func(p *Pipeline) {
		p.targets = targets
	}
}

// WithBootstrap enables the external bootstrap steps.
func WithBootstrap(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.bootstrap = enabled
	}
}

// WithKeepGoing turns bootstrap failures into warnings.
func WithKeepGoing(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.keepGoing = enabled
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger log.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLoader sets the template loader.
func WithLoader(loader *templates.Loader) PipelineOption {
	return func(p *Pipeline) {
		if loader != nil {
			p.loader = loader
		}
	}
}

// NewPipeline creates a pipeline writing through fs and running tools through runner.
// runner may be nil when bootstrap is disabled.
func NewPipeline(fs *projectfs.ProjectFS, runner CommandRunner, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fs:       fs,
		runner:   runner,
		logger:   log.Nop(),
		targets:  typemap.AllTargets,
		newRunID: runIDSource(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loader == nil {
		p.loader = templates.NewLoader()
	}
	p.targets = inOrder(p.targets)
	return p
}

// runIDSource returns a generator of monotonic ULIDs.
func runIDSource() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	}
}

// inOrder filters targets into the fixed emission order, dropping duplicates.
func inOrder(targets []typemap.Target) []typemap.Target {
	selected := make(map[typemap.Target]bool, len(targets))
	for _, t := range targets {
		selected[t] = true
	}
	var out []typemap.Target
	for _, t := range typemap.AllTargets {
		if selected[t] {
			out = append(out, t)
		}
	}
	return out
}

// Targets returns the selected targets in emission order.
func (p *Pipeline) Targets() []typemap.Target {
	return append([]typemap.Target(nil), p.targets...)
}

// Report summarizes one Run.
type Report struct {
	RunID   string
	Files   []File
	Written int
	Steps   []StepResult
	Patched []string
}

// FailedSteps returns the bootstrap steps that did not succeed.
func (r *Report) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.OK() {
			failed = append(failed, s)
		}
	}
	return failed
}

// Plan renders every selected target in memory without side effects.
//
// Parameters:
//   - ctx: Checked between targets
//   - s: Entity schema, read only
//   - cfg: Project config, read only
//
// Returns:
//   - []File: Files in emission order
//   - error: The first render failure; no partial result is returned
func (p *Pipeline) Plan(ctx context.Context, s *schema.EntitySchema, cfg *configschema.ProjectConfig) ([]File, error) {
	return p.plan(ctx, s, cfg, p.logger)
}

func (p *Pipeline) plan(ctx context.Context, s *schema.EntitySchema, cfg *configschema.ProjectConfig, logger log.Logger) ([]File, error) {
	if s == nil || cfg == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "schema and project config are required")
	}

	var files []File
	for _, target := range p.targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.CodeAborted, "generators.Plan", err)
		}
		em, err := NewEmitter(target, p.loader)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := Emit(em, s, cfg)
		if err != nil {
			logger.Error(err, "render failed", log.Str("target", string(target)))
			return nil, err
		}
		logger.Debug("target rendered",
			log.Str("target", string(target)),
			log.Int("files", len(out)),
			log.Dur("duration", time.Since(start)))
		files = append(files, out...)
	}
	return files, nil
}

// Run performs the full generation pass.
//
// Returns:
//   - *Report: Always non-nil; holds whatever completed before a failure
//   - error: Render failures (nothing written), fatal bootstrap failures
//     (nothing written), or the first write/patch failure
func (p *Pipeline) Run(ctx context.Context, s *schema.EntitySchema, cfg *configschema.ProjectConfig) (*Report, error) {
	report := &Report{RunID: p.newRunID()}
	logger := p.logger.With(log.Str("run_id", report.RunID))
	logger.Info("generation started",
		log.Int("entities", len(entitiesOf(s))),
		log.Int("targets", len(p.targets)),
		log.Bool("bootstrap", p.bootstrap))

	files, err := p.plan(ctx, s, cfg, logger)
	if err != nil {
		return report, err
	}
	report.Files = files

	if p.bootstrap {
		if err := p.runBootstrap(ctx, cfg, report, logger); err != nil {
			return report, err
		}
	}

	for _, f := range files {
		if err := p.fs.WriteFile(f.Path, f.Content); err != nil {
			return report, err
		}
		report.Written++
	}
	logger.Info("files written", log.Int("files", report.Written))

	if err := p.patch(cfg, report, logger); err != nil {
		return report, err
	}

	logger.Info("generation finished",
		log.Int("files", report.Written),
		log.Int("failed_steps", len(report.FailedSteps())))
	return report, nil
}

func entitiesOf(s *schema.EntitySchema) []schema.Entity {
	if s == nil {
		return nil
	}
	return s.Entities
}

// runBootstrap executes the bootstrap steps sequentially. A failed step stops
// the run unless keep-going is set; later steps of the same target are skipped
// after a failure since they depend on it.
func (p *Pipeline) runBootstrap(ctx context.Context, cfg *configschema.ProjectConfig, report *Report, logger log.Logger) error {
	if p.runner == nil {
		return errors.New(errors.CodeUnavailable, "bootstrap requested without a command runner")
	}

	failedTargets := make(map[typemap.Target]bool)
	for _, step := range BootstrapSteps(cfg, p.targets) {
		if failedTargets[step.Target] {
			continue
		}
		res := p.runStep(ctx, step, logger)
		report.Steps = append(report.Steps, res)
		if res.OK() {
			continue
		}

		stepErr := errors.Build(errors.CodeOf(res.Err)).
			WithOp("generators.bootstrap").
			WithErr(res.Err).
			WithMsgf("%s step %s failed", step.Target, step.Name).
			Err()
		if !p.keepGoing || ctx.Err() != nil {
			logger.Error(stepErr, "bootstrap step failed", log.Str("step", step.Name))
			return stepErr
		}
		logger.Warn("bootstrap step failed, continuing",
			log.Str("target", string(step.Target)),
			log.Str("step", step.Name),
			log.Str("error", res.Err.Error()))
		failedTargets[step.Target] = true
	}

	if !failedTargets[typemap.Backend] && contains(p.targets, typemap.Backend) {
		if err := p.fs.RemoveFile(path.Join(BackendRoot(cfg), backendArchive)); err != nil {
			logger.Warn("could not remove backend archive", log.Str("error", err.Error()))
		}
	}
	return nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, logger log.Logger) StepResult {
	if err := p.fs.EnsureDirectory(step.Dir); err != nil {
		return StepResult{Step: step, Err: err}
	}
	dir, err := p.fs.GetAbsolutePath(step.Dir)
	if err != nil {
		return StepResult{Step: step, Err: err}
	}

	logger.Info("bootstrap step", log.Str("target", string(step.Target)), log.Str("step", step.Name), log.Str("cmd", step.CommandLine()))
	result, err := p.runner.ExecIn(ctx, dir, step.Command, step.Args...)
	if err != nil && errors.CodeOf(err) == "" {
		err = errors.Wrap(errors.CodeAborted, "generators.bootstrap", err)
	}
	return StepResult{Step: step, Result: result, Err: err}
}

func contains(targets []typemap.Target, t typemap.Target) bool {
	for _, x := range targets {
		if x == t {
			return true
		}
	}
	return false
}

// stylesImports are appended to the Angular global stylesheet.
const stylesImports = `@import "primeicons/primeicons.css";
@import "primeflex/primeflex.css";
`

// patch edits files owned by the bootstrap tools. Files that do not exist are
// skipped, so a run without bootstrap over an empty directory patches nothing.
func (p *Pipeline) patch(cfg *configschema.ProjectConfig, report *Report, logger log.Logger) error {
	record := func(rel string, changed bool, err error) error {
		if err != nil {
			return err
		}
		if changed {
			report.Patched = append(report.Patched, rel)
			logger.Debug("patched file", log.Str("path", rel))
		}
		return nil
	}

	if contains(p.targets, typemap.Frontend) {
		root := FrontendRoot(cfg)

		rel := path.Join(root, "angular.json")
		changed, err := p.fs.PatchJSON(rel, func(doc projectfs.JSONObject) error {
			if opts, ok := doc.Object("projects", cfg.App, "architect", "serve", "options"); ok {
				opts.SetString("proxyConfig", "proxy.conf.json")
			}
			return nil
		})
		if err := record(rel, changed, err); err != nil {
			return err
		}

		rel = path.Join(root, "package.json")
		changed, err = p.fs.PatchJSON(rel, func(doc projectfs.JSONObject) error {
			if scripts, ok := doc.Object("scripts"); ok {
				scripts.SetString("cy:open", "cypress open")
				scripts.SetString("cy:run", "cypress run")
			}
			return nil
		})
		if err := record(rel, changed, err); err != nil {
			return err
		}

		rel = path.Join(root, "src", "styles.scss")
		changed, err = p.fs.AppendIfMissing(rel, "primeicons/primeicons.css", stylesImports)
		if err := record(rel, changed, err); err != nil {
			return err
		}
	}

	if contains(p.targets, typemap.Mobile) {
		rel := path.Join(MobileRoot(cfg), "pubspec.yaml")
		exists, err := p.fs.FileExists(rel)
		if err != nil {
			return err
		}
		if exists {
			changed, err := p.fs.PatchPubspec(rel, PubspecDependencies)
			if err := record(rel, changed, err); err != nil {
				return err
			}
		}
	}
	return nil
}
