package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mezonai/starledger/api"
	"github.com/mezonai/starledger/config"
	"github.com/mezonai/starledger/events"
	"github.com/mezonai/starledger/exception"
	"github.com/mezonai/starledger/jsonrpc"
	"github.com/mezonai/starledger/ledger"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"github.com/mezonai/starledger/network"
	"github.com/mezonai/starledger/security/ratelimit"
	"github.com/mezonai/starledger/service"
	"github.com/mezonai/starledger/sigverify"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	nodeConfigPath   string
	ledgerConfigPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the star registry node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&nodeConfigPath, "config", "config/node.yml", "Path to the node configuration file")
	runCmd.Flags().StringVar(&ledgerConfigPath, "ledger-config", "config/ledger.ini", "Path to the ledger settings file")
}

func runNode() error {
	nodeCfg, settings, err := loadConfiguration(nodeConfigPath, ledgerConfigPath)
	if err != nil {
		return err
	}

	logx.Init(settings.Log.LogxConfig())
	if nodeCfg.MetricsEnabled {
		monitoring.InitMetrics()
	}

	sv, err := sigverify.NewVerifier(settings.Signature.Scheme)
	if err != nil {
		return err
	}

	router := events.NewEventRouter(events.NewEventBus())
	ld, err := ledger.NewLedger(&settings.Ledger, sv, ledger.WithObserver(router))
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	limiter := newRateLimiter(settings.RateLimit)
	defer limiter.Stop()

	stars := service.NewStarService(ld, limiter, router)
	health := service.NewHealthService(ld, stars, nodeCfg.Name)

	apiSrv := api.NewAPIServer(stars, health, nodeCfg.HTTPAddr, nodeCfg.MetricsEnabled)
	rpcSrv := jsonrpc.NewServer(nodeCfg.JSONRPCAddr, stars, health)
	if cors, ok := jsonrpc.CORSFromEnv(); ok {
		rpcSrv.SetCORSConfig(cors)
	}
	grpcSrv := network.NewGRPCServer(stars, health, router.Bus())

	errCh := make(chan error, 3)
	exception.SafeGo("api server", func() {
		errCh <- apiSrv.Start()
	})
	exception.SafeGo("jsonrpc server", func() {
		errCh <- rpcSrv.Start()
	})
	exception.SafeGo("grpc server", func() {
		errCh <- grpcSrv.Start(nodeCfg.GRPCAddr)
	})

	logx.Info("NODE", fmt.Sprintf("Node %s started | http=%s | jsonrpc=%s | grpc=%s | hash=%s | height=%d",
		nodeCfg.Name, nodeCfg.HTTPAddr, nodeCfg.JSONRPCAddr, nodeCfg.GRPCAddr, ld.HashFunction(), ld.GetChainHeight()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logx.Info("NODE", "Received ", sig.String(), ", shutting down")
	case err := <-errCh:
		if err != nil {
			logx.Error("NODE", "Server stopped:", err)
			runErr = err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiSrv.Shutdown(ctx); err != nil {
		logx.Warn("NODE", "API shutdown:", err)
	}
	if err := rpcSrv.Shutdown(ctx); err != nil {
		logx.Warn("NODE", "JSON-RPC shutdown:", err)
	}
	grpcSrv.Stop()
	return runErr
}

// loadConfiguration falls back to defaults for files that do not exist.
func loadConfiguration(nodePath, settingsPath string) (*config.NodeConfig, *config.Settings, error) {
	nodeCfg := config.DefaultNodeConfig()
	if fileExists(nodePath) {
		loaded, err := config.LoadNodeConfig(nodePath)
		if err != nil {
			return nil, nil, fmt.Errorf("load node config: %w", err)
		}
		nodeCfg = *loaded
	} else {
		logx.Warn("CONFIG", "Node config ", nodePath, " not found, using defaults")
	}

	settings := config.DefaultSettings()
	if fileExists(settingsPath) {
		loaded, err := config.LoadSettings(settingsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load ledger settings: %w", err)
		}
		settings = loaded
	} else {
		logx.Warn("CONFIG", "Ledger settings ", settingsPath, " not found, using defaults")
	}
	return &nodeCfg, settings, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newRateLimiter applies the [ratelimit] section to both the wallet and the IP limiter.
// The IP limiter allows ten times the wallet budget.
func newRateLimiter(cfg config.RateLimitConfig) *ratelimit.GlobalRateLimiter {
	global := ratelimit.DefaultGlobalConfig()
	global.WalletConfig.MaxRequests = cfg.MaxRequests
	global.IPConfig.MaxRequests = cfg.MaxRequests * 10
	if cfg.WindowSeconds > 0 {
		global.WalletConfig.WindowSize = cfg.Window()
		global.IPConfig.WindowSize = cfg.Window()
	}
	return ratelimit.NewGlobalRateLimiter(global)
}
