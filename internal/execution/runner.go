package execution

import (
	"context"
	"fmt"

	"sip-creator/internal/builder"
	"sip-creator/internal/engine"
	"sip-creator/internal/logger"
	"sip-creator/internal/metrics"
	"sip-creator/internal/record"
	"sip-creator/internal/validate"
)

// Result is the outcome of mapping one record.
type Result struct {
	RecordID string
	Number   int

	Discarded     bool
	DiscardReason string

	// ExecutionError is set when the program failed; there is no output then.
	ExecutionError error

	Output *builder.Document
	XML    string
	RDF    string

	report validate.Report
	// err is the error Run returns for a discarded record.
	err error
}

// HasValidationErrors reports whether any validation stage failed.
func (r *Result) HasValidationErrors() bool {
	return r.report.HasErrors()
}

func (r *Result) SchemaValidationErrors() []string    { return r.report.Schema }
func (r *Result) StructureValidationErrors() []string { return r.report.Structure }
func (r *Result) ContentValidationErrors() []string   { return r.report.Content }
func (r *Result) RDFValidationErrors() []string       { return r.report.RDF }

// Outcome classifies the result for metrics.
func (r *Result) Outcome() string {
	switch {
	case r.Discarded:
		return metrics.OutcomeDiscarded
	case r.ExecutionError != nil:
		return metrics.OutcomeFailed
	case r.HasValidationErrors():
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeOK
	}
}

// Runner maps and validates records with one compiled mapping. It is safe
// for concurrent use.
type Runner struct {
	executor *engine.Executor
	pipeline *validate.Pipeline
	log      *logger.Logger
}

// NewRunner runs executor and validates with pipeline, which may be nil.
func NewRunner(executor *engine.Executor, pipeline *validate.Pipeline, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}

	return &Runner{executor: executor, pipeline: pipeline, log: log}
}

// Execute maps rec and never fails: every problem ends up in the Result.
func (r *Runner) Execute(ctx context.Context, rec *record.Record) (res *Result) {
	res = &Result{}
	if rec != nil {
		res.RecordID, res.Number = rec.ID, rec.Number
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.WithRecord(res.RecordID).WithField("panic", p).Error("unexpected failure while mapping record")

			*res = Result{
				RecordID:       res.RecordID,
				Number:         res.Number,
				ExecutionError: fmt.Errorf("%w: %v", ErrExecution, p),
			}
		}
	}()

	doc, err := r.executor.Run(ctx, rec)
	if err != nil {
		if reason, ok := engine.IsDiscard(err); ok {
			res.Discarded, res.DiscardReason, res.err = true, reason, err
			return res
		}

		r.log.WithRecord(res.RecordID).WithError(err).Debug("mapping failed")
		res.ExecutionError = err

		return res
	}

	res.Output = doc
	res.XML = builder.Serialize(doc)

	if r.pipeline != nil {
		res.report = *r.pipeline.Run(doc, res.XML)
		res.RDF = res.report.RDFOutput
	}

	return res
}

// Run maps rec and reports the first problem as an error: the discard, the
// execution failure or a *ValidationError for the first failing stage.
func (r *Runner) Run(ctx context.Context, rec *record.Record) (*Result, error) {
	res := r.Execute(ctx, rec)

	switch {
	case res.Discarded:
		return res, res.err
	case res.ExecutionError != nil:
		return res, res.ExecutionError
	}

	for _, stage := range []struct {
		kind     Kind
		problems []string
	}{
		{KindSchema, res.report.Schema},
		{KindStructure, res.report.Structure},
		{KindContent, res.report.Content},
		{KindRDF, res.report.RDF},
	} {
		if len(stage.problems) > 0 {
			return res, &ValidationError{Kind: stage.kind, Problems: stage.problems}
		}
	}

	return res, nil
}
