package domain

import (
	"context"
	"errors"
	"fmt"

	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// DataSource はレスポンスを返したストアを表します
type DataSource string

const (
	// DataSourceDB は正準ストア（データベース）
	DataSourceDB DataSource = "DB"
	// DataSourceLegacy はレガシーストア（スプレッドシート）
	DataSourceLegacy DataSource = "LEGACY"
)

// ErrWorkOrderNotFound は作業指示書が存在しない場合のエラー
var ErrWorkOrderNotFound = errors.New("work order not found")

// Source は作業指示書の読み取りソースを定義します。
// 正準ストアとレガシーストアの両アダプターが実装します。
type Source interface {
	ListWorkOrders(ctx context.Context, workspace *workspacedomain.Workspace, limit int) ([]*WorkOrder, error)
	GetWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, key NaturalKey) (*WorkOrder, error)
}

// RoutedWorkOrders は読み取り結果と出所情報（プロビナンス）を保持します
type RoutedWorkOrders struct {
	Items []*WorkOrder `json:"items"`
	// DataSource は実際に応答したストア
	DataSource DataSource `json:"dataSource"`
	// FallbackUsed はプライマリ障害によりセカンダリへ切り替えたかどうか
	FallbackUsed bool `json:"fallbackUsed"`
}

// RoutedWorkOrder は単一レコードの読み取り結果と出所情報を保持します
type RoutedWorkOrder struct {
	Order        *WorkOrder `json:"order"`
	DataSource   DataSource `json:"dataSource"`
	FallbackUsed bool       `json:"fallbackUsed"`
}

// RoutingFailure は読み取りルーティングの失敗種別を表します
type RoutingFailure string

const (
	// FailureStrictMode はストリクトモードでフォールバックが無効のまま
	// プライマリが失敗したことを表します
	FailureStrictMode RoutingFailure = "strict_mode"
	// FailureBothSources は両ストアとも失敗したことを表します
	FailureBothSources RoutingFailure = "both_sources"
)

// RoutingError は読み取りルーティングの失敗を表す型付きエラーです。
// 呼び出し側は Failure によって「縮退運転」と「完全停止」を描き分けられます。
type RoutingError struct {
	Failure      RoutingFailure
	Primary      DataSource
	PrimaryErr   error
	SecondaryErr error
}

func (e *RoutingError) Error() string {
	switch e.Failure {
	case FailureStrictMode:
		return fmt.Sprintf("primary source %s failed and fallback is disabled (strict mode): %v", e.Primary, e.PrimaryErr)
	default:
		return fmt.Sprintf("both read sources failed (primary %s: %v): %v", e.Primary, e.PrimaryErr, e.SecondaryErr)
	}
}

// Unwrap はより情報量の多いエラーを返します。
// 両系障害の場合はセカンダリ側（プライマリ障害はルーチンでログ済みのため）、
// ストリクトモードの場合はプライマリ側です。
func (e *RoutingError) Unwrap() error {
	if e.Failure == FailureStrictMode {
		return e.PrimaryErr
	}
	return e.SecondaryErr
}
