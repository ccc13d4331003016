package cli

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// TraceKeys are the tracers of the module.
var TraceKeys = []string{"epubfont", "epubfont.fontsubset", "epubfont.cli"}

// TracingConfig selects how the commands trace.
type TracingConfig struct {
	Adapter     string // "go" or "logrus"
	Level       string // Debug, Info or Error
	Destination string // Stdout, Stderr or a file URI; empty means Stderr
}

// ParseLevel accepts "Debug", "Info" and "Error", ignoring case.
func ParseLevel(s string) (tracing.TraceLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return tracing.LevelDebug, nil
	case "info":
		return tracing.LevelInfo, nil
	case "error":
		return tracing.LevelError, nil
	}
	return tracing.LevelError, fmt.Errorf("invalid trace level: %s", s)
}

// SetupTracing installs a trace2go root tracer with the given adapter and
// sets every tracer of the module to the configured level.
func SetupTracing(c TracingConfig) error {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return err
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	adapter := c.Adapter
	switch adapter {
	case "":
		adapter = "go"
	case "go", "logrus":
	default:
		return fmt.Errorf("invalid log adapter: %s", c.Adapter)
	}

	conf := testconfig.Conf{
		"tracing.adapter": adapter,
		"trace.root":      level.String(),
	}
	if c.Destination != "" {
		conf["tracing.destination"] = c.Destination
	}
	for _, key := range TraceKeys {
		conf["trace."+key] = level.String()
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	// Tracers replaced by ConfigureRoot keep their previous level.
	for _, key := range TraceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Debugf("trace level is %s", level)
	return nil
}
