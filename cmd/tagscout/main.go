package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tagscout/internal/album"
	"tagscout/internal/apply"
	"tagscout/internal/config"
	"tagscout/internal/fingerprint"
	"tagscout/internal/logger"
	"tagscout/internal/progress"
	"tagscout/internal/provider/discogs"
	"tagscout/internal/provider/lastfm"
	"tagscout/internal/provider/musicbrainz"
	"tagscout/internal/recognize"
	"tagscout/internal/scan"
	"tagscout/internal/shutdown"

	"github.com/fatih/color"
)

func main() {
	opts, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Wait()

	log := logger.New(opts.cfg.Verbose)
	defer log.Close()

	if !opts.cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("tagscout_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if opts.cfg.Verbose && opts.configPath != "" {
		log.Debug("Loaded configuration from: %s", opts.configPath)
	}

	if err := opts.cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(sh.Context(), opts, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *logger.Logger) error {
	cfg := opts.cfg

	scanner := scan.NewScanner(log)
	files, err := scanner.Scan(cfg.LibraryDir)
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}
	if len(files) == 0 {
		log.Info("No MP3 files found in %s", cfg.LibraryDir)
		return nil
	}
	log.Info("Found %d MP3 files in %s", len(files), cfg.LibraryDir)

	var (
		structured  recognize.Provider
		community   recognize.Provider
		marketplace recognize.Provider

		mbClient *musicbrainz.Client
		dgClient *discogs.Client
	)
	for _, name := range cfg.EnabledProviders() {
		switch name {
		case "musicbrainz":
			mbClient = musicbrainz.NewWithRate(interval(cfg.MusicBrainzInterval))
			structured = mbClient
		case "lastfm":
			community = lastfm.NewWithRate(cfg.LastFMAPIKey, interval(cfg.LastFMInterval))
		case "discogs":
			dgClient = discogs.NewWithRate(cfg.DiscogsToken, interval(cfg.DiscogsInterval))
			marketplace = dgClient
		}
	}

	calc := fingerprint.NewCalculator()
	var audd, acoustid recognize.Fingerprinter
	if cfg.AudDAPIToken != "" {
		audd = fingerprint.NewAudD(cfg.AudDAPIToken, cfg.AudDConfidence)
	}
	if cfg.AcoustIDAPIKey != "" && calc.Available() {
		acoustid = fingerprint.NewAcoustID(cfg.AcoustIDAPIKey, calc)
	}
	fpService := fingerprint.NewService(audd, acoustid, calc, log)

	applier := apply.New(log, !opts.apply || cfg.DryRun)

	if opts.albumMode {
		if mbClient == nil {
			return fmt.Errorf("album mode requires the musicbrainz provider")
		}
		var secondary recognize.ReleaseProvider
		if dgClient != nil {
			secondary = dgClient
		}
		return runAlbum(ctx, files, album.NewResolver(mbClient, secondary, log), applier, opts, log)
	}

	orch := recognize.NewOrchestrator(structured, community, marketplace, fpService, recognize.NewCache(), log)
	return runTracks(ctx, files, orch, applier, opts, log)
}

func runTracks(ctx context.Context, files []recognize.File, orch *recognize.Orchestrator, applier *apply.Applier, opts options, log *logger.Logger) error {
	var bar *progress.Bar
	if !opts.cfg.Verbose && !opts.cfg.DryRun {
		bar = progress.New(len(files))
		log.SetProgressBar(true)
	}

	results, err := orch.ResolveAll(ctx, files, func(i, total int, name string) {
		log.Debug("[%d/%d] Processing: %s", i, total, name)
		if bar != nil {
			if i > 1 {
				bar.Increment()
			}
			bar.SetLabel(name)
		}
	})

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}
	if err != nil {
		return err
	}

	var identified, weak, failed int
	for i, res := range results {
		f := files[i]
		switch {
		case res.Success && res.Confidence >= 0.6:
			identified++
			log.Info("%s %s -> %s", color.GreenString("[ok]"), f.Filename, recognize.Describe(res))
		case res.Success:
			weak++
			log.Info("%s %s -> %s (%.2f)", color.YellowString("[low]"), f.Filename, recognize.Describe(res), res.Confidence)
		default:
			failed++
			log.Info("%s %s", color.RedString("[??]"), f.Filename)
			continue
		}

		if err := applier.Apply(ctx, f, res); err != nil {
			log.Warn("Failed to tag %s: %v", f.Filename, err)
		}
	}

	log.Info("=== Identified %d of %d files (%d low confidence, %d unidentified) ===",
		identified+weak, len(files), weak, failed)
	return nil
}

func runAlbum(ctx context.Context, files []recognize.File, resolver *album.Resolver, applier *apply.Applier, opts options, log *logger.Logger) error {
	candidates, err := resolver.Resolve(ctx, files)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		log.Info("No album candidates found for %d files", len(files))
		return nil
	}

	log.Info("=== Album candidates ===")
	for i, c := range candidates {
		line := fmt.Sprintf("%d. %q by %s (%s, %d tracks, %.2f via %s)",
			i+1, c.Title, c.Artist, c.Year, c.TrackCount, c.Confidence, c.Source)
		if i == 0 {
			line = color.GreenString(line)
		}
		log.Info("%s", line)
	}

	if opts.apply {
		best := candidates[0]
		log.Info("Applying album %q to %d files", best.Title, len(files))
		return applier.ApplyAlbum(ctx, files, best)
	}
	return nil
}

func interval(seconds float64) time.Duration {
	if seconds <= 0 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}
