package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// ReconcileRunAction は2ストア間の照合サンプリングを実行するコマンドのアクション
func ReconcileRunAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}

	report, err := appCtx.Container.Sampler.CompareSample(ctx, workspaceID, int(cmd.Int("sample")))
	if err != nil {
		return fmt.Errorf("照合サンプリングに失敗: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("sample size: %d\n", report.SampleSize)
	fmt.Printf("only in DB: %d\n", len(report.OnlyInDB))
	fmt.Printf("only in legacy: %d\n", len(report.OnlyInLegacy))
	fmt.Printf("matched: %d (compared %d)\n", report.MatchedCount, report.ComparedPairs)
	for field, count := range report.DriftCounts {
		fmt.Printf("drift %s: %d\n", field, count)
	}
	for _, drift := range report.Drifts {
		fmt.Printf("  %s %s: db=%q legacy=%q\n", drift.Key, drift.Field, drift.DBValue, drift.LegacyValue)
	}

	return nil
}
