package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
)

// SyncProcessAction は実行可能なジョブを1パス処理するコマンドのアクション
func SyncProcessAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}

	summary, err := appCtx.Container.Processor.ProcessPending(ctx, workspaceID, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("バッチ処理に失敗: %w", err)
	}

	fmt.Printf("processed: %d\n", summary.Processed)
	fmt.Printf("succeeded: %d\n", summary.Succeeded)
	fmt.Printf("failed: %d\n", summary.Failed)
	fmt.Printf("failedQuota: %d\n", summary.FailedQuota)
	fmt.Printf("remainingPending: %d\n", summary.RemainingPending)

	return nil
}

// SyncJobsAction はジョブ一覧を表示するコマンドのアクション
func SyncJobsAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}

	filter := domain.JobFilter{
		Cursor: cmd.String("cursor"),
		Limit:  int(cmd.Int("limit")),
	}
	if v := cmd.String("status"); v != "" {
		status, err := domain.ParseJobStatus(v)
		if err != nil {
			return err
		}
		filter.Status = &status
	}

	page, err := appCtx.Container.JobService.ListJobs(ctx, workspaceID, filter)
	if err != nil {
		return fmt.Errorf("ジョブ一覧の取得に失敗: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tATTEMPTS\tORDER\tERROR")
	for _, item := range page.Items {
		orderNumber := "-"
		if item.OrderNumber != nil {
			orderNumber = *item.OrderNumber
		}
		errorCode := "-"
		if item.ErrorCode != nil {
			errorCode = *item.ErrorCode
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.JobType, item.Status, item.Attempts, orderNumber, errorCode)
	}
	w.Flush()

	if page.HasMore {
		fmt.Printf("\nnext cursor: %s\n", page.NextCursor)
	}

	return nil
}

// SyncRetryAction はジョブを手動で即時リトライ可能に戻すコマンドのアクション
func SyncRetryAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	jobID, err := uuid.Parse(cmd.String("job-id"))
	if err != nil {
		return fmt.Errorf("ジョブIDが不正です: %w", err)
	}

	if err := appCtx.Container.JobService.RetryJob(ctx, jobID); err != nil {
		return fmt.Errorf("リトライ指示に失敗: %w", err)
	}

	fmt.Printf("job %s reset for retry\n", jobID)

	return nil
}

// SyncEnqueueAction はジョブを手動でエンキューするコマンドのアクション
func SyncEnqueueAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}
	entityID, err := uuid.Parse(cmd.String("entity-id"))
	if err != nil {
		return fmt.Errorf("エンティティIDが不正です: %w", err)
	}
	jobType, err := domain.ParseJobType(cmd.String("type"))
	if err != nil {
		return err
	}

	job, err := appCtx.Container.JobService.Enqueue(ctx, workspaceID, jobType, entityID)
	if err != nil {
		return fmt.Errorf("エンキューに失敗: %w", err)
	}

	fmt.Printf("job %s enqueued (%s)\n", job.ID, job.JobType)

	return nil
}
