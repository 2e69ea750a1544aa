package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"behave/internal/ast"
	"behave/internal/dataflow"
	"behave/internal/extractor"
	"behave/internal/graph"
	"behave/internal/ir"
	"behave/internal/knowledge"
	"behave/internal/sbt"
	"behave/internal/validator"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline turns raw model output into a BehavioralModel. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	opts       Options
	logger     *slog.Logger
	extractor  *extractor.Extractor
	validator  *validator.Validator
	scorer     *validator.Scorer
	builder    *graph.Builder
	analyzer   *dataflow.Analyzer
	linearizer *sbt.Linearizer
	annotator  knowledge.Annotator
	prompts    *knowledge.PromptBuilder
	now        func() time.Time
}

func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Linearizer == nil {
		opts.Linearizer = sbt.NewLinearizer(sbt.DefaultOptions())
	}
	if opts.Annotator == nil {
		opts.Annotator = knowledge.NewRuleAnnotator()
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Pipeline{
		opts:       opts,
		logger:     opts.Logger,
		extractor:  extractor.NewExtractor(opts.Extraction),
		validator:  validator.NewValidator(),
		scorer:     validator.NewScorer(),
		builder:    graph.NewBuilder(),
		analyzer:   dataflow.NewAnalyzer(),
		linearizer: opts.Linearizer,
		annotator:  opts.Annotator,
		prompts:    &knowledge.PromptBuilder{},
		now:        time.Now,
	}
}

// Input is one raw model answer to turn into a behavioral model.
type Input struct {
	Raw       string
	SourceRef string
	// Source is the program text the answer was generated from, if known.
	Source string
	// Annotations, when set, are used instead of asking the Annotator.
	Annotations *ir.Annotations
}

// Run evaluates in.Raw, rejects it below the minimum score and assembles the
// model from the best candidate.
func (p *Pipeline) Run(ctx context.Context, in Input) (*ir.BehavioralModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ev, err := p.Evaluate(in.Raw)
	if err != nil {
		return nil, err
	}
	return p.assemble(ctx, ev, in, ContentHash(in.Raw))
}

func (p *Pipeline) assemble(ctx context.Context, ev *Evaluation, in Input, hash string) (*ir.BehavioralModel, error) {
	if !validator.IsAcceptable(ev.Score, p.opts.MinScore) {
		p.logger.Warn("quality_below_floor",
			slog.String("source", in.SourceRef),
			slog.Float64("score", ev.Score),
			slog.Float64("floor", p.opts.MinScore),
		)
		return nil, &LowScoreError{Score: ev.Score, Floor: p.opts.MinScore}
	}

	warnings := append([]string(nil), ev.Warnings...)
	if !validator.IsAcceptable(ev.Score, p.opts.WarnScore) {
		warnings = append(warnings, fmt.Sprintf("quality score %.2f is below the warning threshold %.2f", ev.Score, p.opts.WarnScore))
		p.logger.Warn("quality_below_warning",
			slog.String("source", in.SourceRef),
			slog.Float64("score", ev.Score),
		)
	}

	root := ast.FromJSON(ev.Object)

	var (
		cfg    *graph.ControlFlowGraph
		flow   *dataflow.Summary
		linear string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		cfg = p.builder.Build(root)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		flow = p.analyzer.Analyze(root)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		linear = p.linearizer.Linearize(root)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	annotations, err := p.annotateStage(ctx, in, root, cfg, flow)
	if err != nil {
		return nil, err
	}

	m := &ir.BehavioralModel{
		ID:           uuid.NewString(),
		SourceRef:    in.SourceRef,
		AST:          root,
		Linearized:   linear,
		CFG:          cfg,
		DataFlow:     flow,
		Annotations:  annotations,
		QualityScore: ev.Score,
		MinScore:     p.opts.MinScore,
		Breakdown:    ev.Breakdown,
		Warnings:     warnings,
		RawSource:    in.Source,
		ContentHash:  hash,
		CreatedAt:    p.now().UTC(),
	}
	p.logger.Info("model_built",
		slog.String("id", m.ID),
		slog.String("source", m.SourceRef),
		slog.Float64("score", m.QualityScore),
		slog.Int("cfg_nodes", len(cfg.Nodes)),
		slog.Int("cfg_edges", len(cfg.Edges)),
		slog.Bool("valid", m.Valid()),
	)
	return m, nil
}

func (p *Pipeline) annotateStage(ctx context.Context, in Input, root *ast.Node, cfg *graph.ControlFlowGraph, flow *dataflow.Summary) (ir.Annotations, error) {
	if in.Annotations != nil {
		return *in.Annotations, nil
	}
	annotations, err := p.annotator.Annotate(ctx, knowledge.AnnotationInput{AST: root, CFG: cfg, DataFlow: flow})
	if err != nil {
		return ir.Annotations{}, fmt.Errorf("annotation failed: %w", err)
	}
	return annotations, nil
}

// ContentHash is the hex sha256 of s, used as the store cache key.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
