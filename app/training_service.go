package app

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"kickpredict/adapters/model"
	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/ratetable"
	"kickpredict/domain/run"
	"kickpredict/internal"
	apperrors "kickpredict/internal/errors"
	"kickpredict/internal/metrics"
	"kickpredict/ports"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "1.0.0"

// TrainingResult summarizes a completed run
type TrainingResult struct {
	Manifest *run.Manifest
	Tables   ratetable.Set
	Report   string
	Duration time.Duration
}

// TrainingService runs the offline pipeline: read, clean, build rate tables,
// derive features, fit, evaluate, persist.
type TrainingService struct {
	reader ports.DatasetReader
	store  ports.ArtifactStore
	cfg    model.TrainConfig
	logger *internal.Logger
}

// NewTrainingService creates a training service
func NewTrainingService(reader ports.DatasetReader, store ports.ArtifactStore, cfg model.TrainConfig) *TrainingService {
	return &TrainingService{
		reader: reader,
		store:  store,
		cfg:    cfg,
		logger: internal.DefaultLogger,
	}
}

// Train executes one run. Artifacts are published together at the end, so a
// failed run leaves the previous run in place.
func (s *TrainingService) Train(ctx context.Context) (*TrainingResult, error) {
	result, err := s.train(ctx)
	var dropped map[string]int
	var auc float64
	if result != nil {
		dropped = make(map[string]int, len(result.Manifest.Clean.Dropped))
		for reason, n := range result.Manifest.Clean.Dropped {
			dropped[string(reason)] = n
		}
		auc = result.Manifest.Metrics.AUC
	}
	metrics.RecordTrainingRun(err, dropped, auc)
	return result, err
}

func (s *TrainingService) train(ctx context.Context) (*TrainingResult, error) {
	start := time.Now()
	runID := core.NewRunID()
	logger := s.logger.With("run_id", runID.String())

	// 1. Read
	raw, err := s.reader.ReadCampaigns(ctx)
	if err != nil {
		return nil, apperrors.DatasetError(s.reader.Source(), err)
	}
	logger.Info("read %d campaigns from %s", len(raw), s.reader.Source())

	// 2. Clean
	prepared, cleanReport := campaign.Prepare(raw)
	records := prepared.Training
	logger.Info("kept %d of %d campaigns for training, %d for rate tables",
		cleanReport.Kept, cleanReport.Total, cleanReport.RateBasis)
	for _, reason := range sortedReasons(cleanReport.Dropped) {
		logger.Debug("dropped %d rows: %s", cleanReport.Dropped[reason], reason)
	}
	if len(records) == 0 {
		return nil, apperrors.TrainingError("no usable campaigns after cleaning", nil)
	}

	// 3. Rate tables, from every complete campaign whatever its outcome
	tables, err := ratetable.Build(ctx, prepared.RateBasis)
	if err != nil {
		return nil, apperrors.TrainingError("failed to build rate tables", err)
	}

	// 4. Features, through the same deriver inference uses
	rows, err := features.DeriveAll(records, tables)
	if err != nil {
		return nil, apperrors.TrainingError("failed to derive features", err)
	}
	targets := make([]float64, len(records))
	for i, rec := range records {
		targets[i] = rec.State.Target()
	}

	// 5. Fit and evaluate
	classifier, evalMetrics, err := model.TrainAndEvaluate(ctx, rows, targets, s.cfg)
	if err != nil {
		return nil, apperrors.TrainingError("failed to train classifier", err)
	}
	logger.Info("holdout accuracy %.4f, AUC %.4f (%d train / %d holdout)",
		evalMetrics.Accuracy, evalMetrics.AUC, evalMetrics.TrainSize, evalMetrics.HoldoutSize)

	// 6. Manifest and artifact
	fingerprint := run.NewRunFingerprint(hashRecords(prepared.RateBasis), tables.Fingerprint(), features.SchemaVersion, s.cfg.Seed, CodeVersion)
	manifest := run.NewManifest(runID, s.reader.Source(), cleanReport, evalMetrics, fingerprint)
	if err := manifest.Validate(); err != nil {
		return nil, apperrors.TrainingError("invalid run manifest", err)
	}
	payload, err := model.NewArtifact(classifier, s.cfg, manifest).Encode()
	if err != nil {
		return nil, apperrors.ArtifactError("failed to encode model", err)
	}
	report := RenderTrainingReport(manifest, tables, records)

	// 7. Persist
	if err := s.store.SaveRun(ctx, ports.RunArtifacts{
		RunID:  runID.String(),
		Tables: tables,
		Model:  payload,
		Report: []byte(report),
	}); err != nil {
		return nil, apperrors.ArtifactError("failed to publish training run", err)
	}

	duration := time.Since(start)
	logger.Info("training run completed in %s", duration.Round(time.Millisecond))
	return &TrainingResult{
		Manifest: manifest,
		Tables:   tables,
		Report:   report,
		Duration: duration,
	}, nil
}

// hashRecords fingerprints the cleaned dataset in row order
func hashRecords(records []campaign.Record) core.Hash {
	var b strings.Builder
	for _, r := range records {
		for _, field := range []string{r.ID, r.Name, r.MainCategory, r.Currency, r.Deadline, r.Launched, string(r.State), r.Country} {
			b.WriteString(field)
			b.WriteByte(0x1f)
		}
		b.WriteString(strconv.FormatFloat(r.USDPledgedReal, 'g', -1, 64))
		b.WriteByte(0x1f)
		b.WriteString(strconv.FormatFloat(r.USDGoalReal, 'g', -1, 64))
		b.WriteByte(0x1e)
	}
	return core.NewHash([]byte(b.String()))
}

func sortedReasons(m map[campaign.DropReason]int) []campaign.DropReason {
	out := make([]campaign.DropReason, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
