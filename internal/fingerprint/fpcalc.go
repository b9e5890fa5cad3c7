package fingerprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrUnavailable means the fpcalc binary (Chromaprint) is not
// installed. Callers degrade gracefully; fingerprinting is optional.
var ErrUnavailable = errors.New("fpcalc binary not available")

// Fingerprint is a Chromaprint acoustic fingerprint with the analyzed
// duration in seconds.
type Fingerprint struct {
	Duration    float64 `json:"duration"`
	Fingerprint string  `json:"fingerprint"`
}

// Calculator shells out to fpcalc to compute acoustic fingerprints.
type Calculator struct {
	bin     string
	timeout time.Duration
}

// NewCalculator creates a Calculator using the fpcalc binary on PATH.
func NewCalculator() *Calculator {
	return &Calculator{bin: "fpcalc", timeout: 30 * time.Second}
}

// Available reports whether the fpcalc binary can be found.
func (c *Calculator) Available() bool {
	_, err := exec.LookPath(c.bin)
	return err == nil
}

// Calculate fingerprints the first 120 seconds of an audio file.
// Returns ErrUnavailable when fpcalc is not installed.
func (c *Calculator) Calculate(ctx context.Context, path string) (Fingerprint, error) {
	if _, err := exec.LookPath(c.bin); err != nil {
		return Fingerprint{}, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.bin, "-json", "-length", "120", path).Output()
	if err != nil {
		if ctx.Err() != nil {
			return Fingerprint{}, fmt.Errorf("fpcalc timed out: %w", ctx.Err())
		}
		return Fingerprint{}, fmt.Errorf("fpcalc failed: %w", err)
	}

	var fp Fingerprint
	if err := json.Unmarshal(out, &fp); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to parse fpcalc output: %w", err)
	}
	if fp.Fingerprint == "" {
		return Fingerprint{}, fmt.Errorf("fpcalc produced no fingerprint for %s", path)
	}

	return fp, nil
}
