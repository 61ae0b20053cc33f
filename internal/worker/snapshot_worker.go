// Package worker exports the ledger to JSON snapshots in response to change
// events.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/provider/file"
)

// Snapshotter reads the full ledger document from a backend.
type Snapshotter interface {
	Snapshot(ctx context.Context) (core.FinanceData, error)
}

// SnapshotWorker debounces ledger change events into periodic snapshot
// writes. Change messages only mark the ledger dirty; the flush loop does
// the reads and writes, so a burst of writes costs one export.
type SnapshotWorker struct {
	source   Snapshotter
	dir      string
	interval time.Duration
	dirty    atomic.Bool
}

func NewSnapshotWorker(source Snapshotter, dir string, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		source:   source,
		dir:      dir,
		interval: interval,
	}
}

// HandleChangeMessage records that the ledger changed. It never fails, the
// message only flips the dirty flag.
func (w *SnapshotWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.DebugContext(ctx, "Ledger change received",
		"entity", msg.Entity,
		"op", msg.Op,
		"id", msg.ID)
	w.dirty.Store(true)
	return nil
}

// Run flushes snapshots until ctx ends. A snapshot is written at startup
// regardless of the dirty flag so a fresh worker always leaves one behind.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if err := w.writeSnapshot(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup snapshot failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final flush on shutdown if anything is pending.
			if w.dirty.Load() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := w.writeSnapshot(flushCtx); err != nil {
					slog.Error("Final snapshot failed", "error", err)
				}
				cancel()
			}
			return ctx.Err()
		case <-ticker.C:
			if !w.dirty.Swap(false) {
				continue
			}
			if err := w.writeSnapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Snapshot failed", "error", err)
				w.dirty.Store(true)
			}
		}
	}
}

func (w *SnapshotWorker) writeSnapshot(ctx context.Context) error {
	data, err := w.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(w.dir, file.DefaultFilename)
	tmp, err := os.CreateTemp(w.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot written",
		"path", path,
		"accounts", len(data.Accounts),
		"categories", len(data.Categories),
		"transactions", len(data.Transactions))

	return nil
}
