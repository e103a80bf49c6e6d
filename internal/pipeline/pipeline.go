package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"forumgraph/internal/chunk"
	"forumgraph/internal/graph"
	"forumgraph/internal/model"
	"forumgraph/internal/normalize"
	"forumgraph/internal/redact"
	"forumgraph/internal/source"
	"forumgraph/pkg/config"
	"forumgraph/pkg/errors"
	"forumgraph/pkg/logger"
)

// Pipeline runs the full import: extract, normalize, redact, checkpoint,
// load, then derive. Sources are processed one at a time; derived graphs
// run only after every source finished loading, since the cross-platform
// edges need all platforms present.
type Pipeline struct {
	cfg      *config.Config
	manifest *config.Manifest
	driver   neo4j.DriverWithContext
	logger   *zap.Logger
}

// New assembles a pipeline over an already-verified graph connection.
func New(cfg *config.Config, manifest *config.Manifest, driver neo4j.DriverWithContext) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		manifest: manifest,
		driver:   driver,
		logger:   logger.Get(),
	}
}

// Run imports every source in the manifest and computes the derived
// graphs. An extraction failure is fatal for its source only; load batch
// failures are recorded in the report and skipped. The returned report
// always covers whatever was attempted.
func (p *Pipeline) Run(ctx context.Context) (*graph.Report, error) {
	runID := uuid.NewString()
	report := graph.NewReport(runID)
	log := p.logger.With(zap.String("run_id", runID))

	loader := graph.NewLoader(p.driver, p.cfg.ChunkSize)
	if err := loader.EnsureIndexes(ctx); err != nil {
		return report, err
	}

	policy := redact.Policy{
		OmitPrivateMessages:  p.manifest.Redaction.OmitPrivateMessages,
		OmitProtectedContent: p.manifest.Redaction.OmitProtectedContent,
		OmitSystemUsers:      p.manifest.Redaction.OmitSystemUsers,
	}

	var loaded []string
	for _, src := range p.manifest.Sources {
		srcReport, err := p.runSource(ctx, src, policy, loader)
		report.Merge(srcReport)
		if err != nil {
			log.Error("Source import failed, skipping platform",
				zap.String("platform", src.Name),
				zap.Error(err),
			)
			continue
		}
		loaded = append(loaded, src.Name)
	}

	deriver := graph.NewDeriver(p.driver)
	for _, err := range deriver.Run(ctx, loaded, p.cfg.CorpusPrefix, p.cfg.CodeNameLocale) {
		// Already logged by the deriver; keep the report aware of it.
		report.Add("derived", "derivation", 0, 0, err)
	}

	failures := report.Failures()
	log.Info("Pipeline run finished",
		zap.Strings("platforms", loaded),
		zap.Int("records_loaded", report.Loaded()),
		zap.Int("failed_batches", len(failures)),
	)

	return report, nil
}

// runSource takes one source through extraction, normalization, redaction
// and loading, returning its own batch report. No partial data reaches the
// store if extraction fails.
func (p *Pipeline) runSource(ctx context.Context, src config.Source, policy redact.Policy, loader *graph.Loader) (*graph.Report, error) {
	report := graph.NewReport(src.Name)

	extractor, err := source.Connect(ctx, src, p.cfg.ConsentField)
	if err != nil {
		return report, err
	}
	defer extractor.Close()

	raw, err := extractor.FetchAll(ctx)
	if err != nil {
		return report, err
	}

	ds := normalize.Build(extractor.Platform(), raw)

	if policy.Active() {
		ds = redact.Apply(ds, policy)
	}

	if p.cfg.CheckpointDir != "" {
		if err := p.writeCheckpoint(ds); err != nil {
			if errors.IsFatal(err) {
				return report, err
			}
			// Checkpoints are a diagnostic artifact; losing one must not
			// block the load.
			p.logger.Warn("Checkpoint write failed, loading anyway",
				zap.String("platform", src.Name),
				zap.Error(err),
			)
		}
	}

	loader.LoadDataset(ctx, ds, report)
	return report, nil
}

func (p *Pipeline) writeCheckpoint(ds *model.Dataset) error {
	writer, err := chunk.NewWriter(p.cfg.CheckpointDir)
	if err != nil {
		return err
	}
	return writer.WriteDataset(ds, p.cfg.ChunkSize)
}
