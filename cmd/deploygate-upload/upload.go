package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeployGate/deploygate-upload-github-action/internal/config"
	"github.com/DeployGate/deploygate-upload-github-action/internal/ghaction"
	"github.com/DeployGate/deploygate-upload-github-action/internal/input"
	"github.com/DeployGate/deploygate-upload-github-action/internal/prcomment"
	"github.com/DeployGate/deploygate-upload-github-action/internal/report"
	"github.com/DeployGate/deploygate-upload-github-action/internal/uploader"
)

func uploadCmd() *cobra.Command {
	var (
		apiKey           string
		owner            string
		filePath         string
		message          string
		distributionKey  string
		distributionName string
		releaseNote      string
		disableNotify    string
		prComment        string
		githubToken      string
		server           string
		maxAttempts      int
		timeoutMinutes   int
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Validate, upload, and report an app binary",
		Long: `Upload an app binary to DeployGate and report the result.

Designed for CI pipelines. When run inside GitHub Actions, unset flags
fall back to the corresponding action inputs (api_key, app_owner_name,
app_file_path, ...) and the PR number is auto-detected from the event
payload. Defaults can also come from .deploygate.toml in the working
directory or the global config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd.Context(), uploadOpts{
				apiKey:           apiKey,
				owner:            owner,
				filePath:         filePath,
				message:          message,
				distributionKey:  distributionKey,
				distributionName: distributionName,
				releaseNote:      releaseNote,
				disableNotify:    disableNotify,
				prComment:        prComment,
				githubToken:      githubToken,
				server:           server,
				maxAttempts:      maxAttempts,
				timeoutMinutes:   timeoutMinutes,
			})
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "DeployGate API key (input: api_key)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name of the target app space (input: app_owner_name)")
	cmd.Flags().StringVar(&filePath, "file", "", "path to the APK/AAB/IPA (input: app_file_path)")
	cmd.Flags().StringVar(&message, "message", "", "short message attached to the upload")
	cmd.Flags().StringVar(&distributionKey, "distribution-key", "", "distribution page key to update")
	cmd.Flags().StringVar(&distributionName, "distribution-name", "", "distribution page name to create or update")
	cmd.Flags().StringVar(&releaseNote, "release-note", "", "release note shown on the distribution page")
	cmd.Flags().StringVar(&disableNotify, "disable-notify", "", `"true" to suppress member notifications (iOS only)`)
	cmd.Flags().StringVar(&prComment, "pr-comment", "", `"false" to skip the PR status comment`)
	cmd.Flags().StringVar(&githubToken, "github-token", "", "token for the PR comment (default: GITHUB_TOKEN env)")
	cmd.Flags().StringVar(&server, "server", "", "API base URL (default: https://deploygate.com)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "upload attempts before giving up (default: 3)")
	cmd.Flags().IntVar(&timeoutMinutes, "timeout-minutes", 0, "per-attempt timeout in minutes (default: 30)")

	return cmd
}

type uploadOpts struct {
	apiKey           string
	owner            string
	filePath         string
	message          string
	distributionKey  string
	distributionName string
	releaseNote      string
	disableNotify    string
	prComment        string
	githubToken      string
	server           string
	maxAttempts      int
	timeoutMinutes   int
}

// actionInputs fills unset options from the GitHub Actions INPUT_*
// environment, so the binary doubles as a composite-action entrypoint.
func (o *uploadOpts) actionInputs() {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = ghaction.Input(name)
		}
	}
	fill(&o.apiKey, "api_key")
	fill(&o.owner, "app_owner_name")
	fill(&o.filePath, "app_file_path")
	fill(&o.message, "message")
	fill(&o.distributionKey, "distribution_key")
	fill(&o.distributionName, "distribution_name")
	fill(&o.releaseNote, "release_note")
	fill(&o.disableNotify, "disable_notify")
	fill(&o.prComment, "enable_pr_comment")
	fill(&o.githubToken, "github_token")
}

func runUpload(ctx context.Context, opts uploadOpts) error {
	host := ghaction.NewHost()
	if ghaction.RunningInActions() {
		opts.actionInputs()
	}
	if opts.githubToken == "" {
		opts.githubToken = os.Getenv("GITHUB_TOKEN")
	}

	// Config files supply defaults only; load failures degrade to
	// warnings so the pipeline still runs with built-in defaults.
	globalCfg, err := config.LoadGlobal()
	if err != nil {
		log.Printf("upload: load global config: %v (using defaults)", err)
	}
	repoCfg, err := config.LoadRepoConfig(".")
	if err != nil {
		log.Printf("upload: load repo config: %v (using defaults)", err)
	}
	applyConfigDefaults(&opts, repoCfg)

	validator := &input.Validator{
		Mask:  host.AddMask,
		Warnf: host.Warningf,
	}
	req, err := validator.Validate(input.Params{
		APIKey:           opts.apiKey,
		AppOwnerName:     opts.owner,
		AppFilePath:      opts.filePath,
		Message:          opts.message,
		DistributionKey:  opts.distributionKey,
		DistributionName: opts.distributionName,
		ReleaseNote:      opts.releaseNote,
		DisableNotify:    opts.disableNotify,
	})
	if err != nil {
		return err
	}

	log.Printf("upload: file=%s size=%.1f MB owner=(masked) message=%d chars",
		req.FilePath, float64(req.FileSize)/(1024*1024), len(req.Message))

	server := config.ResolveServer(opts.server, repoCfg, globalCfg)
	attempts := config.ResolveRetryAttempts(opts.maxAttempts, repoCfg, globalCfg)
	timeout := config.ResolveTimeoutMinutes(opts.timeoutMinutes, repoCfg, globalCfg)

	client := uploader.New(server,
		uploader.WithMaxAttempts(attempts),
		uploader.WithTimeout(time.Duration(timeout)*time.Minute),
		uploader.WithLogf(log.Printf),
	)

	reporter := &report.Reporter{
		Out:   host,
		Logf:  log.Printf,
		Warnf: host.Warningf,
	}

	results, err := client.Upload(ctx, req)
	if err != nil {
		return reporter.Failure(err)
	}
	if err := reporter.Success(results, req.FileSize); err != nil {
		return err
	}

	// Best-effort from here: the upload already succeeded, so comment
	// problems must never fail the run.
	commentOn := config.ResolvePRComment(opts.prComment, repoCfg, globalCfg)
	postComment(ctx, host, opts, results, server, commentOn)
	return nil
}

// postComment reconciles the PR status comment. Every skip reason is
// logged as a no-op; every store failure degrades to a warning.
func postComment(ctx context.Context, host *ghaction.Host, opts uploadOpts, results *uploader.AppResults, server string, enabled bool) {
	if !enabled {
		log.Printf("upload: PR comment disabled, skipping")
		return
	}
	if !ghaction.RunningInActions() {
		log.Printf("upload: not running in GitHub Actions, skipping PR comment")
		return
	}
	prNumber, err := ghaction.DetectPRNumber()
	if err != nil {
		log.Printf("upload: no pull request context, skipping PR comment: %v", err)
		return
	}
	ghOwner, ghRepo, err := ghaction.Repository()
	if err != nil {
		host.Warningf("upload: cannot post PR comment: %v", err)
		return
	}
	if opts.githubToken == "" {
		host.Warningf("upload: cannot post PR comment: github token not set")
		return
	}

	store := prcomment.NewGitHubStore(ctx, opts.githubToken, ghOwner, ghRepo, prNumber)
	body := prcomment.Body(results, server)
	if err := prcomment.Reconcile(ctx, store, body); err != nil {
		host.Warningf("upload: PR comment failed (upload itself succeeded): %v", err)
		return
	}
	log.Printf("upload: PR comment reconciled on %s/%s#%d", ghOwner, ghRepo, prNumber)
}

// applyConfigDefaults fills unset upload fields from .deploygate.toml.
func applyConfigDefaults(opts *uploadOpts, repoCfg *config.RepoConfig) {
	if repoCfg == nil {
		return
	}
	if opts.owner == "" {
		opts.owner = repoCfg.AppOwnerName
	}
	if opts.distributionKey == "" {
		opts.distributionKey = repoCfg.DistributionKey
	}
	if opts.distributionName == "" {
		opts.distributionName = repoCfg.DistributionName
	}
	if opts.disableNotify == "" && repoCfg.DisableNotify {
		opts.disableNotify = "true"
	}
}
