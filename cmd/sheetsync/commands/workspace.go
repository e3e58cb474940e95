package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// WorkspaceShowAction はワークスペース設定を表示するコマンドのアクション
func WorkspaceShowAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}

	workspace, err := appCtx.Container.WorkspaceService.Get(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("ワークスペースの取得に失敗: %w", err)
	}

	fmt.Printf("id: %s\n", workspace.ID)
	fmt.Printf("name: %s\n", workspace.Name)
	fmt.Printf("spreadsheetID: %s\n", workspace.SpreadsheetID)
	fmt.Printf("primaryReadSource: %s\n", workspace.PrimaryReadSource)
	fmt.Printf("strictReadSource: %t\n", workspace.StrictReadSource)

	return nil
}

// WorkspaceSetReadSourceAction は読み取り優先ソースを切り替えるコマンドのアクション
func WorkspaceSetReadSourceAction(ctx context.Context, cmd *cli.Command) error {
	appCtx, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer appCtx.Close()

	workspaceID, err := uuid.Parse(cmd.String("workspace"))
	if err != nil {
		return fmt.Errorf("ワークスペースIDが不正です: %w", err)
	}

	source, err := domain.ParseReadSource(cmd.String("source"))
	if err != nil {
		return err
	}

	if err := appCtx.Container.WorkspaceService.SetReadSource(ctx, workspaceID, source); err != nil {
		return fmt.Errorf("読み取りソースの切り替えに失敗: %w", err)
	}

	fmt.Printf("primary read source set to %s\n", source)

	return nil
}
