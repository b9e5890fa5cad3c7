package main

import (
	"fmt"
	"os"

	"tagscout/internal/config"
)

// options combines file configuration with the flags that only exist
// on the command line.
type options struct {
	cfg        config.Config
	configPath string
	albumMode  bool
	apply      bool
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs() (options, error) {
	args := os.Args[1:]

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return options{}, initConfigFile()
		}
	}

	var configPath string

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return options{}, fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return options{}, fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	opts := options{configPath: configPath}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--dry-run", "-n":
			cfg.DryRun = true

		case "--album", "-a":
			opts.albumMode = true

		case "--apply":
			opts.apply = true

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return options{}, fmt.Errorf("unknown flag: %s", arg)
			}
			cfg.LibraryDir = config.ExpandHome(arg)
		}
	}

	opts.cfg = cfg
	return opts, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  library_dir: path to your MP3 library")
	fmt.Println("  providers: [musicbrainz, lastfm, discogs] (search order)")
	fmt.Println("  lastfm_api_key / discogs_token: provider credentials")
	fmt.Println("  acoustid_api_key / audd_api_token: fingerprinting credentials")
	fmt.Println("  audd_confidence: 0.0-1.0 (confidence assigned to AudD matches)")
	fmt.Println("  verbose: true/false (enable detailed logging)")
	fmt.Println("  dry_run: true/false (preview mode)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("tagscout - Identify and tag poorly-labelled MP3 files")
	fmt.Println()
	fmt.Println("Usage: tagscout [options] <library_dir>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -n, --dry-run              Preview changes without writing tags")
	fmt.Println("  -a, --album                Resolve the directory as one album")
	fmt.Println("      --apply                Write accepted results into the files' tags")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./tagscout.yaml")
	fmt.Println("  ~/.config/tagscout/config.yaml")
	fmt.Println("  ~/.tagscout.yaml")
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Progress bar shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/tagscout/logs/")
	fmt.Println("  Verbose mode: All output to stdout, no progress bar, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Preview what every file would be tagged as")
	fmt.Println("  tagscout --dry-run ~/Music/incoming")
	fmt.Println()
	fmt.Println("  # Identify and write tags, embedding cover art")
	fmt.Println("  tagscout --apply ~/Music/incoming")
	fmt.Println()
	fmt.Println("  # Treat the directory as a single album")
	fmt.Println("  tagscout --album --apply ~/Music/incoming/unknown-album")
	fmt.Println()
	fmt.Println("Without --apply, tagscout only reports what it found.")
}
