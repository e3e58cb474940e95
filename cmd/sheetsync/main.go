package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fmops/sheetsync/cmd/sheetsync/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "sheetsync",
		Usage: "施設管理ワークオーダーの DB / スプレッドシート同期基盤",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "同期ジョブ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "process",
						Usage: "保留中の同期ジョブをバッチ実行",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "1回のバッチで処理するジョブ数の上限",
							},
						},
						Action: commands.SyncProcessAction,
					},
					{
						Name:  "jobs",
						Usage: "同期ジョブ一覧を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "status",
								Usage: "ステータスで絞り込み（PENDING/PROCESSING/DONE/FAILED）",
							},
							&cli.StringFlag{
								Name:  "cursor",
								Usage: "ページネーションカーソル",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "取得件数の上限",
							},
						},
						Action: commands.SyncJobsAction,
					},
					{
						Name:  "retry",
						Usage: "失敗した同期ジョブを再実行可能にする",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "job-id",
								Usage:    "同期ジョブID",
								Required: true,
							},
						},
						Action: commands.SyncRetryAction,
					},
					{
						Name:  "enqueue",
						Usage: "同期ジョブを登録",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "entity-id",
								Usage:    "対象ワークオーダーID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "type",
								Usage:    "ジョブ種別（WORK_ORDER/SIGNED_DOCUMENT/SIGNED_MATCH）",
								Required: true,
							},
						},
						Action: commands.SyncEnqueueAction,
					},
				},
			},
			{
				Name:  "workspace",
				Usage: "ワークスペース管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "show",
						Usage: "ワークスペース詳細を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
						},
						Action: commands.WorkspaceShowAction,
					},
					{
						Name:  "set-read-source",
						Usage: "読み取りソース設定を変更",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "source",
								Usage:    "プライマリ読み取りソース（LEGACY/DB）",
								Required: true,
							},
						},
						Action: commands.WorkspaceSetReadSourceAction,
					},
				},
			},
			{
				Name:  "reconcile",
				Usage: "照合コマンド",
				Commands: []*cli.Command{
					{
						Name:  "run",
						Usage: "2ストア間の照合サンプリングを実行",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "workspace",
								Usage:    "ワークスペースID",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "sample",
								Usage: "サンプリング件数",
							},
							&cli.BoolFlag{
								Name:  "json",
								Usage: "JSON形式で出力",
							},
						},
						Action: commands.ReconcileRunAction,
					},
				},
			},
			{
				Name:  "server",
				Usage: "サーバ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "運用APIサーバを起動",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: commands.ServerStartAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
