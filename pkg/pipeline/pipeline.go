// Package pipeline runs safe-phase enumeration end to end.
//
// The pipeline loads a conflict matrix (from a SUMO network or a matrix JSON
// file), looks the result up in the cache, enumerates on a miss and stores
// the result. CLI, HTTP server and batch jobs all go through [Runner] so they
// share caching and logging behaviour.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	out, err := runner.Execute(ctx, pipeline.Options{
//	    NetFile:  "grid.net.xml",
//	    Junction: "C",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(out.Result.Phases))
//
// Enumerate every traffic light of a network:
//
//	net, _ := netxml.Load("grid.net.xml")
//	outs, err := runner.EnumerateAll(ctx, net, pipeline.Options{})
package pipeline

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultCacheTTL is how long enumeration results stay cached. Results
	// depend only on the matrix, so the TTL only bounds cache growth.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// MaxConcurrency caps the EnumerateAll fan-out.
	MaxConcurrency = 64
)

// Format constants for command and API output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatSVG   = "svg"
	FormatDOT   = "dot"
)

// ValidFormats is the set of supported output formats for phase listings.
var ValidFormats = map[string]bool{
	FormatTable: true,
	FormatJSON:  true,
}

// ValidRenderFormats is the set of supported conflict graph formats.
var ValidRenderFormats = map[string]bool{
	FormatSVG: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Input: exactly one of NetFile or MatrixFile for Execute.
	NetFile    string `json:"net_file,omitempty"`
	MatrixFile string `json:"matrix_file,omitempty"`

	// Junction selects the junction of NetFile. For MatrixFile it overrides
	// the junction ID declared in the document.
	Junction string `json:"junction,omitempty"`

	// MaxPhases aborts enumeration when exceeded. 0 means unlimited.
	MaxPhases int `json:"max_phases,omitempty"`

	// Refresh bypasses the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// CacheTTL overrides DefaultCacheTTL.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Concurrency bounds EnumerateAll. Defaults to GOMAXPROCS.
	Concurrency int `json:"concurrency,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks numeric bounds and paths and fills in
// defaults. It does not require an input file; Execute checks that.
func (o *Options) ValidateAndSetDefaults() error {
	if o.MaxPhases < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max phases must be >= 0, got %d", o.MaxPhases)
	}
	if o.Concurrency < 0 || o.Concurrency > MaxConcurrency {
		return errors.New(errors.ErrCodeInvalidInput, "concurrency must be between 0 and %d, got %d", MaxConcurrency, o.Concurrency)
	}
	if o.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must be >= 0, got %s", o.CacheTTL)
	}
	for _, p := range []string{o.NetFile, o.MatrixFile} {
		if p == "" {
			continue
		}
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	if o.Junction != "" {
		if err := errors.ValidateJunctionID(o.Junction); err != nil {
			return err
		}
	}

	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Concurrency == 0 {
		o.Concurrency = min(runtime.GOMAXPROCS(0), MaxConcurrency)
	}
	return nil
}

// validateInput checks the input selection for Execute.
func (o *Options) validateInput() error {
	switch {
	case o.NetFile == "" && o.MatrixFile == "":
		return errors.New(errors.ErrCodeInvalidInput, "either a network file or a matrix file is required")
	case o.NetFile != "" && o.MatrixFile != "":
		return errors.New(errors.ErrCodeInvalidInput, "network file and matrix file are mutually exclusive")
	case o.NetFile != "" && o.Junction == "":
		return errors.New(errors.ErrCodeInvalidInput, "a junction is required with a network file")
	}
	return nil
}

// ValidateFormat checks a phase listing format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported format %q (want table or json)", format)
	}
	return nil
}

// ValidateRenderFormat checks a conflict graph format.
func ValidateRenderFormat(format string) error {
	if !ValidRenderFormats[format] {
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported render format %q (want svg or dot)", format)
	}
	return nil
}

// =============================================================================
// Output
// =============================================================================

// Stats holds timing and size information of one run.
type Stats struct {
	LoadTime      time.Duration `json:"load_time"`
	EnumerateTime time.Duration `json:"enumerate_time"`
	Connections   int           `json:"connections"`
	Phases        int           `json:"phases"`
	Levels        int           `json:"levels"`
}

// Output is the result of one pipeline run.
type Output struct {
	Junction phase.Junction `json:"junction"`
	Result   *phase.Result  `json:"result"`
	CacheKey string         `json:"cache_key"`
	CacheHit bool           `json:"cache_hit"`
	Stats    Stats          `json:"stats"`
}
