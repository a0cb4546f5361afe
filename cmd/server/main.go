package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/vinodismyname/sellerscope/config"
	"github.com/vinodismyname/sellerscope/internal/audit"
	"github.com/vinodismyname/sellerscope/internal/registry"
	"github.com/vinodismyname/sellerscope/internal/runtime"
	"github.com/vinodismyname/sellerscope/internal/security"
	"github.com/vinodismyname/sellerscope/internal/telemetry"
	"github.com/vinodismyname/sellerscope/internal/workbooks"
	"github.com/vinodismyname/sellerscope/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio   bool
		configPath string
	)

	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.StringVar(&configPath, "config", "", "Optional YAML config file; SELLERSCOPE_* env vars override it")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// stdout carries the MCP transport; logs go to stderr.
	logger := zlog.Output(os.Stderr).With().Str("service", "sellerscope-server").Logger()
	ctx := logger.WithContext(context.Background())
	// Tool handler contexts come from the transport and carry no logger.
	zerolog.DefaultContextLogger = &logger

	// Path loading is optional: without an allow-list reports arrive inline.
	secMgr, err := security.NewManager(cfg.AllowedDirs, nil)
	if err != nil {
		logger.Error().Err(err).Msg("security: invalid allow-list configuration")
		fmt.Fprintln(os.Stderr, "invalid security configuration; check SELLERSCOPE_ALLOWED_DIRS")
		os.Exit(1)
	}
	if err := secMgr.ValidateConfig(); err != nil {
		logger.Warn().Msg("no allowed directories configured; load_report accepts inline content only")
		secMgr = nil
	} else {
		logger.Info().Strs("allowed_dirs", secMgr.AllowedDirectories()).Msg("security allow-list configured")
	}

	limits := runtime.LimitsFromConfig(cfg)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	telemetryHooks := telemetry.NewHooks(logger)
	wbMgr := workbooks.NewManager(runtimeController)
	store := audit.NewStore(cfg.MaxSessions, audit.OptionsFromConfig(cfg, wbMgr, telemetryHooks))

	toolRegistry := registry.New()
	toolFilter := registry.NewToolFilter(toolRegistry)

	srv := server.NewMCPServer(
		"SellerScope Audit Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(buildHooks(logger, telemetryHooks)),
		server.WithToolHandlerMiddleware(toolFilter.ToolMiddleware),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(toolFilter.FilterTools),
	)

	registry.RegisterAuditTools(srv, toolRegistry, &registry.Service{Store: store, Security: secMgr})
	if err := toolFilter.Disable(registry.DisabledFromEnv()...); err != nil {
		logger.Warn().Err(err).Msg("ignoring unknown names in " + registry.DisabledToolsEnv)
	}
	tools := toolFilter.FilterTools(ctx, toolRegistry.Tools())

	logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Str("marketplace", cfg.Marketplace).
		Float64("breakeven_acos", cfg.BreakevenACoS).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("max_concurrent_parses", limits.MaxConcurrentParses).
		Int("max_sessions", cfg.MaxSessions).
		Strs("tools", toolNames(tools)).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if useStdio {
		telemetryHooks.OnServerStart()
		defer telemetryHooks.OnServerStop()
		if err := server.ServeStdio(srv); err != nil {
			// Use stderr for transport errors so clients don't misinterpret output
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// If no transport flags provided, print usage and exit non-zero
	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}

var errToolResult = errors.New("tool returned an error result")

// buildHooks constructs mcp-go server hooks that feed the telemetry hooks.
func buildHooks(logger zerolog.Logger, t *telemetry.Hooks) *server.Hooks {
	hooks := &server.Hooks{}
	var started sync.Map

	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		t.OnSessionStart(session.SessionID())
	})

	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		t.OnSessionEnd(session.SessionID())
	})

	hooks.AddAfterListTools(func(ctx context.Context, id any, req *mcp.ListToolsRequest, res *mcp.ListToolsResult) {
		logger.Debug().Int("tools", len(res.Tools)).Msg("list_tools served")
	})

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		started.Store(id, time.Now())
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, res *mcp.CallToolResult) {
		var elapsed time.Duration
		if v, ok := started.LoadAndDelete(id); ok {
			elapsed = time.Since(v.(time.Time))
		}
		var err error
		if res != nil && res.IsError {
			err = errToolResult
		}
		t.OnToolCall(clientSessionID(ctx), req.Params.Name, elapsed, err)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		started.Delete(id)
		logger.Error().Str("method", string(method)).Err(err).Msg("request error")
	})

	return hooks
}

func clientSessionID(ctx context.Context) string {
	if cs := server.ClientSessionFromContext(ctx); cs != nil {
		return cs.SessionID()
	}
	return ""
}

func toolNames(tools []mcp.Tool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}
