package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"

	"github.com/jaxxstorm/pkgver"
	"github.com/jaxxstorm/pkgver/internal/config"
	"github.com/jaxxstorm/pkgver/internal/logger"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Commitish     string `arg:"" optional:"" help:"Git commitish to analyze or version string to convert (default: HEAD)"`
	Format        string `short:"f" default:"release" enum:"release,pip,python,brief,debian,deb,rpm,semver,generic,javascript,js,node,dotnet,csharp,go,golang" help:"Output format"`
	Repo          string `short:"r" help:"Repository path (default: current directory)"`
	Config        string `short:"c" env:"PKGVER_CONFIG" help:"Config file (default: .pkgver.yaml in the repository)"`
	TargetVersion string `short:"t" env:"PKGVER_TARGET_VERSION" help:"Version the project is working towards (e.g., '2.0.0')"`
	Override      string `env:"PKGVER_VERSION" help:"Use this version as-is instead of calculating one"`
	PackageName   string `help:"Package name to match in PKG-INFO or METADATA"`
	TagPattern    string `help:"Regex pattern to filter tags (e.g., '^sdk/')"`
	TagPrefix     string `help:"Prefix stripped from tags before parsing (e.g., 'sdk/v')"`
	CacheFile     string `help:"Version cache file, relative to the repository"`
	WriteCache    bool   `help:"Store the calculated version in the cache file"`
	LogLevel      string `help:"Log level: debug, info, warn, error (default: warn)"`
	JSON          bool   `short:"j" help:"Output as JSON"`
	ShowVersion   bool   `help:"Show version information" name:"version"`
}

type jsonOutput struct {
	*pkgver.Formats
	Source pkgver.Source `json:"source"`
	Dirty  bool          `json:"dirty"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("pkgver"),
		kong.Description("Calculate package versions from Git tags and Sem-Ver commit headers, or convert version strings"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	// Handle version flag
	if c.ShowVersion {
		return c.showVersion()
	}

	// Check if the input looks like a version string to convert
	if c.Commitish != "" && isVersionString(c.Commitish) {
		return c.convertVersion()
	}

	// Otherwise, calculate from git repository
	return c.calculateVersion()
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "pkgver",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("pkgver version %s\n", Version)
	return nil
}

func (c *CLI) convertVersion() error {
	versions, err := pkgver.CalculateFromString(c.Commitish)
	if err != nil {
		return err
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versions)
	}

	fmt.Println(getVersionOutput(versions, c.Format))
	return nil
}

func (c *CLI) calculateVersion() error {
	repoPath := c.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	cfg, err := config.Load(repoPath, c.Config)
	if err != nil {
		return err
	}
	c.applyConfig(cfg)
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	log, err := logger.New(c.LogLevel, false)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	commitish := "HEAD"
	if c.Commitish != "" {
		commitish = c.Commitish
	}

	lookup := pkgver.Lookup{
		FS:          osfs.New(repoPath),
		PackageName: c.PackageName,
		Override:    c.Override,
		CacheFile:   c.CacheFile,
		WriteCache:  c.WriteCache,
		Options: pkgver.Options{
			Commitish:     plumbing.Revision(commitish),
			TargetVersion: c.TargetVersion,
			TagPattern:    c.TagPattern,
			TagPrefix:     c.TagPrefix,
			Logger:        log,
		},
	}

	// A missing repository is not an error: metadata or the cache may still
	// know the version
	var gitRepo *pkgver.GitRepository
	repo, err := pkgver.OpenRepository(repoPath)
	switch {
	case err == nil:
		lookup.Options.Repository = repo
		gitRepo = pkgver.NewGitRepository(repo, lookup.Options.Commitish, nil, c.TagPrefix)
	case errors.Is(err, pkgver.ErrNoRepository):
		log.Debug("no git repository", zap.String("path", repoPath))
	default:
		return fmt.Errorf("opening repository: %w", err)
	}

	version, source, err := lookup.Version()
	if err != nil {
		return err
	}
	versions := pkgver.NewFormats(version)

	if c.JSON {
		out := jsonOutput{Formats: versions, Source: source}
		if gitRepo != nil {
			dirty, err := gitRepo.IsDirty()
			if err != nil {
				log.Warn("checking worktree", zap.Error(err))
			}
			out.Dirty = dirty
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	fmt.Println(getVersionOutput(versions, c.Format))
	return nil
}

// applyConfig fills options not given on the command line from the project
// configuration
func (c *CLI) applyConfig(cfg *config.Config) {
	setDefault(&c.TargetVersion, cfg.TargetVersion)
	setDefault(&c.PackageName, cfg.PackageName)
	setDefault(&c.TagPattern, cfg.TagPattern)
	setDefault(&c.TagPrefix, cfg.TagPrefix)
	setDefault(&c.CacheFile, cfg.CacheFile)
	setDefault(&c.LogLevel, cfg.LogLevel)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// isVersionString checks if the input looks like a version string rather than a git reference
func isVersionString(input string) bool {
	// Simple heuristic: dotted and parseable as a version, so branch names
	// and hashes are treated as commitish
	if !strings.Contains(input, ".") {
		return false
	}
	_, err := pkgver.Parse(input)
	return err == nil
}

func getVersionOutput(versions *pkgver.Formats, format string) string {
	switch strings.ToLower(format) {
	case "release", "pip", "python":
		return versions.Python
	case "brief":
		return versions.Brief
	case "debian", "deb":
		return versions.Debian
	case "rpm":
		return versions.RPM
	case "generic", "semver":
		return versions.SemVer
	case "javascript", "js", "node":
		return versions.JavaScript
	case "dotnet", ".net", "csharp":
		return versions.DotNet
	case "go", "golang":
		return versions.Go
	default:
		return versions.Python
	}
}
