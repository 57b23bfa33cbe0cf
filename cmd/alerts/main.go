// Command alerts streams Raydium swap and liquidity activity from a Solana
// blockSubscribe feed, normalizes it into protocol-agnostic events, and
// delivers alerts to stdout and an optional webhook.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"raydium-alerts/internal/config"
	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
	"raydium-alerts/internal/processor"
	"raydium-alerts/internal/solana"
	"raydium-alerts/internal/webhook"
)

func main() {
	// .env values never override the real environment.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil && err != context.Canceled {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	settings := config.Load(logger)
	metrics := observability.NewMetrics("")

	if settings.MetricsAddr != "" {
		go serveMetrics(settings.MetricsAddr, logger)
	}

	// Webhook delivery is optional; absence of a URL disables it entirely.
	var notifier *webhook.Notifier
	if cfg := webhook.ConfigFromEnv(); cfg != nil {
		notifier = webhook.NewNotifier(*cfg, logger, metrics)
		defer notifier.Close()
		logger.Info("webhook notifier enabled",
			zap.String("url", cfg.URL),
			zap.Int("max_retries", cfg.MaxRetries))
	}

	filter := event.NewFilter(settings.FilterTokens, settings.FilterPools)
	emitter := processor.NewEmitter(settings.OutputFormat, notifier, os.Stdout, logger, metrics)

	processors := make(map[solana.Pubkey]processor.Processor)
	if settings.MarketEnabled(event.ProtocolCPMM) {
		p := processor.NewCPMM(filter, emitter, logger, metrics)
		processors[p.ProgramID()] = p
	}
	if settings.MarketEnabled(event.ProtocolCLMM) {
		p := processor.NewCLMM(filter, emitter, logger, metrics)
		processors[p.ProgramID()] = p
	}
	if settings.MarketEnabled(event.ProtocolAmmV4) {
		p := processor.NewAmmV4(filter, emitter, logger, metrics)
		processors[p.ProgramID()] = p
	}
	logger.Info("processors configured",
		zap.Int("count", len(processors)),
		zap.Int("filter_tokens", len(settings.FilterTokens)),
		zap.Int("filter_pools", len(settings.FilterPools)),
		zap.String("output_format", string(settings.OutputFormat)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	client, err := solana.NewBlockClient(ctx, settings.RPCWSURL, nil, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	blocks, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}
	logger.Info("subscribed to blocks", zap.String("endpoint", settings.RPCWSURL))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-blocks:
			if !ok {
				return nil
			}
			metrics.RecordBlock(block.Slot)
			processBlock(block, processors, logger, metrics)
		}
	}
}

// processBlock dispatches every successful transaction's instructions, at
// every nesting level, to the processor registered for their program.
// Raydium's self-emitted event logs arrive as inner self-CPI instructions,
// and swaps routed through aggregators are inner instructions too, so
// top-level dispatch alone would miss both. Per-block problems are logged
// and skipped; the stream never stops.
func processBlock(block solana.BlockNotification, processors map[solana.Pubkey]processor.Processor, logger *zap.Logger, metrics *observability.Metrics) {
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if tx.Failed() {
			metrics.RecordTransactionSkipped()
			continue
		}

		instructions, err := tx.BuildInstructions()
		if err != nil {
			logger.Debug("skipping undecodable transaction",
				zap.String("signature", tx.Signature()),
				zap.Error(err))
			metrics.RecordTransactionSkipped()
			continue
		}

		meta := solana.TxMeta{
			Signature: tx.Signature(),
			Slot:      block.Slot,
			BlockTime: block.BlockTime,
		}

		for _, top := range instructions {
			if p, ok := processors[top.Instruction.ProgramID]; ok {
				p.Process(meta, top.Instruction, top.Inner)
			}
			dispatchInner(meta, top.Inner, processors)
		}
	}
}

// dispatchInner walks a CPI tree and dispatches every registered program's
// instruction, each with its own subtree as the nested trace.
func dispatchInner(meta solana.TxMeta, nodes []solana.NestedInstruction, processors map[solana.Pubkey]processor.Processor) {
	for i := range nodes {
		node := &nodes[i]
		if p, ok := processors[node.Instruction.ProgramID]; ok {
			p.Process(meta, node.Instruction, node.Inner)
		}
		dispatchInner(meta, node.Inner, processors)
	}
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics server stopped", zap.Error(err))
	}
}
