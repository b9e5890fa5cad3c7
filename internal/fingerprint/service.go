package fingerprint

import (
	"context"
	"errors"

	"tagscout/internal/logger"
	"tagscout/internal/recognize"
)

// earlyStopScore ends the recognizer chain once a match this strong
// has been found.
const earlyStopScore = 0.8

// Service chains the audio recognizers: the upload-based service
// first (it works without a local fingerprinter), then AcoustID, then
// a local duration estimate as a weak last resort. It implements
// recognize.Fingerprinter.
type Service struct {
	recognizers []recognize.Fingerprinter
	calc        *Calculator
	logger      *logger.Logger
}

// NewService wires the recognizer chain. Nil recognizers are skipped;
// calc may be nil when fpcalc is not installed.
func NewService(audd, acoustid recognize.Fingerprinter, calc *Calculator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.New(false)
	}
	s := &Service{calc: calc, logger: log}
	if audd != nil {
		s.recognizers = append(s.recognizers, audd)
	}
	if acoustid != nil {
		s.recognizers = append(s.recognizers, acoustid)
	}
	return s
}

// Recognize runs the chain and accumulates candidates, stopping early
// on a strong match. A recognizer failure is logged and the chain
// continues; only a fully empty chain yields an error.
func (s *Service) Recognize(ctx context.Context, path string) ([]recognize.Candidate, error) {
	var out []recognize.Candidate

	for _, r := range s.recognizers {
		results, err := r.Recognize(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return out, err
			}
			s.logger.Debug("  Audio recognizer failed: %v", err)
			continue
		}
		out = append(out, results...)

		for _, c := range results {
			if c.Confidence > earlyStopScore {
				return out, nil
			}
		}
	}

	if len(out) == 0 && s.calc != nil && s.calc.Available() {
		if cand, ok := s.durationEstimate(ctx, path); ok {
			out = append(out, cand)
		}
	}

	return out, nil
}

// durationEstimate produces a weak no-identity candidate from the
// decoded duration when every online recognizer came up empty. It only
// signals "this is probably music".
func (s *Service) durationEstimate(ctx context.Context, path string) (recognize.Candidate, bool) {
	fp, err := s.calc.Calculate(ctx, path)
	if err != nil {
		return recognize.Candidate{}, false
	}

	d := int(fp.Duration)
	if d <= 60 || d >= 600 {
		return recognize.Candidate{}, false
	}

	return recognize.Candidate{
		Confidence: 0.2,
		Source:     recognize.SourceLocalFingerprint,
	}, true
}
