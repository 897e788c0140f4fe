package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codecov/cli/internal/api"
	"github.com/codecov/cli/internal/finder"
	"github.com/codecov/cli/internal/prepare"
	"github.com/codecov/cli/internal/resolver"
	"github.com/codecov/cli/internal/upload"
)

// uploadOpts is the flag surface shared by do-upload, upload-process
// and upload-coverage.
type uploadOpts struct {
	commitSHA   string
	parentSHA   string
	branch      string
	pullRequest string
	slug        string
	gitService  string
	token       string

	buildCode  string
	buildURL   string
	jobCode    string
	name       string
	flags      []string
	envVars    []string
	reportCode string
	reportType string

	files            []string
	searchRoot       string
	searchRootAlias  string
	excludeDirs      []string
	excludeAliases   []string
	disableSearch    bool
	disableFileFixes bool

	networkRoot   string
	networkFilter string
	networkPrefix string

	plugins  []string
	gcovArgs []string

	dryRun               bool
	useLegacyUploader    bool
	legacyAlias          bool
	handleNoReportsFound bool
	failOnError          bool
}

// mergeAliases folds the compatibility flag spellings into their
// canonical fields.
func (o *uploadOpts) mergeAliases() {
	if o.searchRoot == "" {
		o.searchRoot = o.searchRootAlias
	}
	o.excludeDirs = append(o.excludeDirs, o.excludeAliases...)
	o.useLegacyUploader = o.useLegacyUploader || o.legacyAlias
}

func addUploadFlags(cmd *cobra.Command, o *uploadOpts) {
	f := cmd.Flags()
	f.StringVarP(&o.commitSHA, "sha", "C", "", "commit SHA of the report, 40 hex digits")
	f.StringVar(&o.parentSHA, "parent-sha", "", "SHA of the parent commit, when known")
	f.StringVarP(&o.branch, "branch", "B", "", "branch to which the commit belongs")
	f.StringVarP(&o.pullRequest, "pr", "P", "", "pull request number")
	f.StringVarP(&o.slug, "slug", "r", "", "repository slug, owner/repo (envvar: CODECOV_SLUG)")
	f.StringVar(&o.gitService, "git-service", "", "hosting service of the repository (github, gitlab, bitbucket, ...)")
	f.StringVarP(&o.token, "token", "t", "", "upload token (envvar: CODECOV_TOKEN)")

	f.StringVarP(&o.buildCode, "build", "b", "", "build code of the CI run")
	f.StringVar(&o.buildURL, "build-url", "", "URL of the CI build")
	f.StringVarP(&o.jobCode, "job-code", "j", "", "job code of the CI run")
	f.StringVarP(&o.name, "name", "n", "", "custom name for this upload")
	f.StringArrayVarP(&o.flags, "flag", "F", nil, "flag for the upload, repeatable")
	f.StringArrayVarP(&o.envVars, "env", "e", nil, "environment variable captured with the upload, repeatable (envvar: CODECOV_ENV)")
	f.StringVar(&o.reportCode, "report-code", "default", "code of the report to upload into")
	f.StringVar(&o.reportType, "report-type", "coverage", "type of report, coverage or test_results")

	f.StringArrayVarP(&o.files, "file", "f", nil, "explicit report file to upload, repeatable")
	f.StringVarP(&o.searchRoot, "coverage-files-search-root-folder", "s", "", "folder where report search starts")
	f.StringVar(&o.searchRootAlias, "dir", "", "alias of --coverage-files-search-root-folder")
	f.StringArrayVar(&o.excludeDirs, "coverage-files-search-exclude-folder", nil, "folder excluded from the search, repeatable")
	f.StringArrayVar(&o.excludeAliases, "exclude", nil, "alias of --coverage-files-search-exclude-folder")
	f.BoolVar(&o.disableSearch, "disable-search", false, "only upload explicitly provided files")
	f.BoolVar(&o.disableFileFixes, "disable-file-fixes", false, "skip sending path fixes")

	f.StringVar(&o.networkRoot, "network-root-folder", "", "root folder of the tracked file listing")
	f.StringVar(&o.networkFilter, "network-filter", "", "keep only tracked files with this path prefix")
	f.StringVar(&o.networkPrefix, "network-prefix", "", "prefix added to every tracked file path")

	f.StringArrayVar(&o.plugins, "plugin", nil, "preparation plugin to run before searching, repeatable")
	f.StringArrayVar(&o.gcovArgs, "gcov-args", nil, "extra argument passed to gcov, repeatable")

	f.BoolVarP(&o.dryRun, "dry-run", "d", false, "collect and print the payload without uploading")
	f.BoolVar(&o.useLegacyUploader, "legacy", false, "upload through the v4 endpoint")
	f.BoolVar(&o.legacyAlias, "use-legacy-uploader", false, "alias of --legacy")
	f.BoolVar(&o.handleNoReportsFound, "handle-no-reports-found", false, "exit zero and trigger notifications when no report files match")
	f.BoolVarP(&o.failOnError, "fail-on-error", "Z", false, "exit non-zero on upload failure")
}

var doUploadCmd = &cobra.Command{
	Use:   "do-upload",
	Short: "Register the commit and report, then upload coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return doUploadOpts.run(cmd.Context())
	},
}

var uploadProcessCmd = &cobra.Command{
	Use:   "upload-process",
	Short: "Register the commit and report, then upload coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadProcessOpts.run(cmd.Context())
	},
}

var uploadCoverageCmd = &cobra.Command{
	Use:   "upload-coverage",
	Short: "Register the commit and report, then upload coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadCoverageOpts.run(cmd.Context())
	},
}

var (
	doUploadOpts       uploadOpts
	uploadProcessOpts  uploadOpts
	uploadCoverageOpts uploadOpts
)

func init() {
	addUploadFlags(doUploadCmd, &doUploadOpts)
	addUploadFlags(uploadProcessCmd, &uploadProcessOpts)
	addUploadFlags(uploadCoverageCmd, &uploadCoverageOpts)
	rootCmd.AddCommand(doUploadCmd)
	rootCmd.AddCommand(uploadProcessCmd)
	rootCmd.AddCommand(uploadCoverageCmd)
}

// run resolves the upload context and hands off to the orchestrator.
func (o *uploadOpts) run(ctx context.Context) error {
	o.mergeAliases()
	res := newResolver(map[resolver.Field]string{
		resolver.FieldCommitSHA:         o.commitSHA,
		resolver.FieldParentSHA:         o.parentSHA,
		resolver.FieldBranch:            o.branch,
		resolver.FieldPullRequestNumber: o.pullRequest,
		resolver.FieldSlug:              o.slug,
		resolver.FieldGitService:        o.gitService,
		resolver.FieldBuildCode:         o.buildCode,
		resolver.FieldBuildURL:          o.buildURL,
		resolver.FieldJobCode:           o.jobCode,
	}, map[resolver.Field]string{
		resolver.FieldSlug: "CODECOV_SLUG",
	})

	err := o.execute(ctx, res)
	if err != nil && !o.failOnError {
		logger.Warn("upload failed, exiting zero without --fail-on-error", zap.Error(err))
		return nil
	}
	return err
}

func (o *uploadOpts) execute(ctx context.Context, res *resolver.Resolver) error {
	commitSHA, err := res.Require(ctx, resolver.FieldCommitSHA)
	if err != nil {
		return err
	}
	slug, err := res.Require(ctx, resolver.FieldSlug)
	if err != nil {
		return err
	}
	branch, err := res.Resolve(ctx, resolver.FieldBranch)
	if err != nil {
		return err
	}
	gitService, err := res.Resolve(ctx, resolver.FieldGitService)
	if err != nil {
		return err
	}
	if gitService == "" {
		gitService = "github"
	}
	pullRequest, err := res.Resolve(ctx, resolver.FieldPullRequestNumber)
	if err != nil {
		return err
	}
	parentSHA, err := res.Resolve(ctx, resolver.FieldParentSHA)
	if err != nil {
		return err
	}
	buildCode, _ := res.Resolve(ctx, resolver.FieldBuildCode)
	buildURL, _ := res.Resolve(ctx, resolver.FieldBuildURL)
	jobCode, _ := res.Resolve(ctx, resolver.FieldJobCode)
	ciService := adapter.Get(resolver.FieldService)

	token := resolveToken(o.token)
	tokenless := tokenlessFor(token, branch)
	if token == "" && tokenless == "" {
		logger.Warn("no upload token found, the upload only works for public repositories on supported CI providers")
	}
	logger.Info("starting upload",
		zap.String("commit_sha", commitSHA),
		zap.String("slug", slug),
		zap.String("token", api.RedactToken(token)))

	plugins := prepare.Select(o.plugins, o.searchRoot, o.gcovArgs, logger)
	if err := prepare.RunAll(ctx, plugins, logger); err != nil {
		return err
	}

	client := api.New(api.Options{
		BaseURL:   ingestURL(),
		Token:     token,
		Tokenless: tokenless,
		Logger:    logger,
	})

	uploader := &upload.Uploader{
		Client: client,
		LegacyClient: api.New(api.Options{
			BaseURL: legacyURL(),
			Token:   token,
			Logger:  logger,
		}),
		Probe:  probe,
		Logger: logger,
	}
	result, err := uploader.Run(ctx, upload.Params{
		CommitSHA:        commitSHA,
		ParentSHA:        parentSHA,
		Slug:             slug,
		GitService:       gitService,
		Branch:           branch,
		PullID:           pullRequest,
		ReportCode:       o.reportCode,
		BuildURL:         buildURL,
		BuildCode:        buildCode,
		JobCode:          jobCode,
		Name:             o.name,
		CIService:        ciService,
		Flags:            o.flags,
		Env:              captureEnv(o.envVars),
		ReportType:       finder.ReportType(o.reportType),
		SearchRoot:       o.searchRoot,
		ExplicitFiles:    o.files,
		ExcludeDirs:      o.excludeDirs,
		DisableSearch:    o.disableSearch,
		DisableFileFixes: o.disableFileFixes,
		Network: upload.NetworkOptions{
			Filter:     o.networkFilter,
			Prefix:     o.networkPrefix,
			RootFolder: o.networkRoot,
		},
		DryRun:               o.dryRun,
		FailOnError:          o.failOnError,
		HandleNoReportsFound: o.handleNoReportsFound,
		UseLegacyUploader:    o.useLegacyUploader,
	})
	if err != nil {
		return err
	}
	logger.Info("upload finished", zap.Int("status", result.StatusCode))
	return nil
}

// captureEnv resolves the requested variable names, plus the ones
// named in CODECOV_ENV, into NAME=value pairs.
func captureEnv(names []string) []string {
	all := append([]string{}, names...)
	if extra := os.Getenv("CODECOV_ENV"); extra != "" {
		for _, name := range strings.Split(extra, ",") {
			if name = strings.TrimSpace(name); name != "" {
				all = append(all, name)
			}
		}
	}
	var pairs []string
	for _, name := range all {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, os.Getenv(name)))
	}
	return pairs
}
