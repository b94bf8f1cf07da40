package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"figma-to-fsd/internal/common/config"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/common/observability"
	"figma-to-fsd/internal/models"
	"figma-to-fsd/internal/workflow"
)

// Environment variables read when the matching flag is empty.
const (
	envFigmaToken     = "FIGMA_TOKEN"
	envAtlassianToken = "ATLASSIAN_API_TOKEN"
)

type generateOptions struct {
	requestFile string
	configFile  string
	req         models.GenerationRequest
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation and print its events as JSON lines",
	Long: `Run one generation locally. Every progress event is written to stdout
as one JSON object per line; logs go to stderr.

Examples:
  fsdctl generate --figma-url "https://www.figma.com/design/AbC/Site?node-id=1-2" \
    --component Footer --mode jira --atlassian-url https://acme.atlassian.net \
    --atlassian-email dev@acme.com --project WEB
  fsdctl generate --request footer.json | jq 'select(.type == "complete")'`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	bindGenerateFlags(generateCmd, &genOpts)
}

func bindGenerateFlags(cmd *cobra.Command, o *generateOptions) {
	f := cmd.Flags()
	f.StringVar(&o.requestFile, "request", "", "JSON file holding a generation request; flags override its fields")
	f.StringVar(&o.configFile, "config", "", "Configuration file (default: configs/config.yaml lookup)")

	r := &o.req
	f.StringVar(&r.FigmaURL, "figma-url", "", "Figma link to the component")
	f.StringVar(&r.FigmaToken, "figma-token", "", "Figma personal access token (default $"+envFigmaToken+")")
	f.StringVar(&r.TabletURL, "tablet-url", "", "Figma link to the tablet variant")
	f.StringVar(&r.MobileURL, "mobile-url", "", "Figma link to the mobile variant")
	f.StringVarP(&r.ComponentName, "component", "c", "", "Component name")
	f.StringVarP((*string)(&r.Mode), "mode", "m", string(models.ModeBoth), "Output: jira, confluence or both")
	f.StringVar(&r.Atlassian.BaseURL, "atlassian-url", "", "Atlassian site, e.g. https://acme.atlassian.net")
	f.StringVar(&r.Atlassian.Email, "atlassian-email", "", "Atlassian account email")
	f.StringVar(&r.Atlassian.APIToken, "atlassian-token", "", "Atlassian API token (default $"+envAtlassianToken+")")
	f.StringVarP(&r.ProjectKey, "project", "p", "", "Jira project key")
	f.StringVarP(&r.SpaceKey, "space", "s", "", "Confluence space key")
	f.StringVar(&r.ParentPageID, "parent-page", "", "Confluence parent page id")
	f.StringSliceVar(&r.NotifyEmails, "notify", nil, "Addresses to notify when the run ends")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := genOpts.request(cmd, os.Getenv)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(genOpts.configFile)
	if err != nil {
		return err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, "stderr")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sinks, closeSinks, err := workflow.SinksFromConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	orchestrator := workflow.NewFromConfig(cfg, observability.NewNoop(), log, sinks...)
	return streamEvents(cmd.OutOrStdout(), orchestrator.Run(ctx, req))
}

// request merges the request file with the flags that were set and fills
// secrets from the environment.
func (o *generateOptions) request(cmd *cobra.Command, getenv func(string) string) (models.GenerationRequest, error) {
	var req models.GenerationRequest
	if o.requestFile != "" {
		raw, err := os.ReadFile(o.requestFile)
		if err != nil {
			return req, fmt.Errorf("read request file: %w", err)
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return req, fmt.Errorf("parse request file %s: %w", o.requestFile, err)
		}
	}

	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) || *dst == "" {
			*dst = value
		}
	}
	set("figma-url", &req.FigmaURL, o.req.FigmaURL)
	set("figma-token", &req.FigmaToken, o.req.FigmaToken)
	set("tablet-url", &req.TabletURL, o.req.TabletURL)
	set("mobile-url", &req.MobileURL, o.req.MobileURL)
	set("component", &req.ComponentName, o.req.ComponentName)
	set("mode", (*string)(&req.Mode), string(o.req.Mode))
	set("atlassian-url", &req.Atlassian.BaseURL, o.req.Atlassian.BaseURL)
	set("atlassian-email", &req.Atlassian.Email, o.req.Atlassian.Email)
	set("atlassian-token", &req.Atlassian.APIToken, o.req.Atlassian.APIToken)
	set("project", &req.ProjectKey, o.req.ProjectKey)
	set("space", &req.SpaceKey, o.req.SpaceKey)
	set("parent-page", &req.ParentPageID, o.req.ParentPageID)
	if flags.Changed("notify") || len(req.NotifyEmails) == 0 {
		req.NotifyEmails = o.req.NotifyEmails
	}

	if req.FigmaToken == "" {
		req.FigmaToken = getenv(envFigmaToken)
	}
	if req.Atlassian.APIToken == "" {
		req.Atlassian.APIToken = getenv(envAtlassianToken)
	}
	return req, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// streamEvents writes each event as a JSON line and returns the run's error,
// if any.
func streamEvents(w io.Writer, events <-chan models.Event) error {
	enc := json.NewEncoder(w)
	var writeErr error
	_, err := workflow.Await(events, func(ev models.Event) {
		if writeErr == nil {
			writeErr = enc.Encode(ev)
		}
	})
	if err != nil {
		return err
	}
	return writeErr
}
