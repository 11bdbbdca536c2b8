// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime/pprof"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/x/profiler"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Values accepted by the run command's --trace flag.
const (
	traceOpenTelemetry = "otel"
	traceOpenCensus    = "opencensus"
)

type profileOptions struct {
	trace        string
	callgrind    string
	cpuProfile   string
	filter       string
	closuresOnly bool
	sourceLabels bool
}

func (po *profileOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&po.trace, "trace", "",
		`Log a span for each function call: "otel" or "opencensus".`)
	flags.StringVar(&po.callgrind, "callgrind", "",
		"Write a callgrind profile of function calls to the named file.")
	flags.StringVar(&po.cpuProfile, "cpuprofile", "",
		"Write a Go CPU profile, labeled by lisp function, to the named file.")
	flags.StringVar(&po.filter, "profile-filter", "",
		"Only profile functions whose names match this regular expression.")
	flags.BoolVar(&po.closuresOnly, "profile-closures-only", false,
		"Do not profile builtin functions.")
	flags.BoolVar(&po.sourceLabels, "profile-source-labels", false,
		"Label profiled functions with their source location.")
	cmd.MarkFlagsMutuallyExclusive("trace", "callgrind", "cpuprofile")
}

func (po *profileOptions) options() ([]profiler.Option, error) {
	var opts []profiler.Option
	if po.filter != "" {
		re, err := regexp.Compile(po.filter)
		if err != nil {
			return nil, fmt.Errorf("invalid profile filter: %w", err)
		}
		opts = append(opts, profiler.WithNameFilter(re))
	}
	if po.closuresOnly {
		opts = append(opts, profiler.WithBuiltinFilter())
	}
	if po.sourceLabels {
		opts = append(opts, profiler.WithSourceLabeler())
	}
	return opts, nil
}

// start enables the selected profiler on env.  The returned function
// completes the profile and must be called once evaluation has finished.
func (po *profileOptions) start(ctx context.Context, env *lisp.LEnv, logger logrus.FieldLogger) (func() error, error) {
	opts, err := po.options()
	if err != nil {
		return nil, err
	}
	log := logger.WithField("profiler", po.name())
	switch {
	case po.trace == traceOpenTelemetry:
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(&logSpanExporter{log: log}))
		otel.SetTracerProvider(tp)
		p := profiler.NewOpenTelemetryAnnotator(env.Runtime, ctx, opts...)
		if err := p.Enable(); err != nil {
			return nil, err
		}
		return func() error {
			if err := p.Complete(); err != nil {
				return err
			}
			return tp.Shutdown(context.Background())
		}, nil
	case po.trace == traceOpenCensus:
		exporter := &logSpanExporter{log: log}
		octrace.RegisterExporter(exporter)
		octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
		p := profiler.NewOpenCensusAnnotator(env.Runtime, ctx, opts...)
		if err := p.Enable(); err != nil {
			octrace.UnregisterExporter(exporter)
			return nil, err
		}
		return func() error {
			defer octrace.UnregisterExporter(exporter)
			return p.Complete()
		}, nil
	case po.trace != "":
		return nil, fmt.Errorf("unknown trace format: %q", po.trace)
	case po.callgrind != "":
		p := profiler.NewCallgrindProfiler(env.Runtime, opts...)
		if err := p.SetFile(po.callgrind); err != nil {
			return nil, err
		}
		if err := p.Enable(); err != nil {
			return nil, err
		}
		return p.Complete, nil
	case po.cpuProfile != "":
		f, err := os.Create(po.cpuProfile) //#nosec G304
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		p := profiler.NewPprofAnnotator(env.Runtime, ctx, opts...)
		if err := p.Enable(); err != nil {
			pprof.StopCPUProfile()
			_ = f.Close()
			return nil, err
		}
		return func() error {
			err := p.Complete()
			pprof.StopCPUProfile()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil
	default:
		return func() error { return nil }, nil
	}
}

func (po *profileOptions) name() string {
	switch {
	case po.trace != "":
		return po.trace
	case po.callgrind != "":
		return "callgrind"
	case po.cpuProfile != "":
		return "pprof"
	default:
		return ""
	}
}

// logSpanExporter writes finished spans to a logger.  It serves as both an
// OpenTelemetry SpanExporter and an OpenCensus Exporter.
type logSpanExporter struct {
	log logrus.FieldLogger
}

var _ sdktrace.SpanExporter = &logSpanExporter{}
var _ octrace.Exporter = &logSpanExporter{}

func (e *logSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := logrus.Fields{
			"span":     s.Name(),
			"trace_id": s.SpanContext().TraceID().String(),
			"span_id":  s.SpanContext().SpanID().String(),
			"duration": s.EndTime().Sub(s.StartTime()),
		}
		if s.Parent().IsValid() {
			fields["parent_id"] = s.Parent().SpanID().String()
		}
		e.log.WithFields(fields).Info("span")
	}
	return nil
}

func (e *logSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (e *logSpanExporter) ExportSpan(s *octrace.SpanData) {
	fields := logrus.Fields{
		"span":     s.Name,
		"trace_id": s.TraceID.String(),
		"span_id":  s.SpanID.String(),
		"duration": s.EndTime.Sub(s.StartTime),
	}
	if s.ParentSpanID != (octrace.SpanID{}) {
		fields["parent_id"] = s.ParentSpanID.String()
	}
	e.log.WithFields(fields).Info("span")
}
