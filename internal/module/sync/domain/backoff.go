package domain

import (
	"strings"
	"time"
)

// DefaultMaxAttempts はジョブが終端FAILEDになるまでの最大試行回数の既定値
const DefaultMaxAttempts = 5

// retryDelays はリトライ間隔の固定テーブルです。
// 上限付きにすることで、失敗し続けるジョブでも最大1日1回のリトライに収まります。
var retryDelays = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	1 * time.Hour,
	6 * time.Hour,
	24 * time.Hour,
}

// DelayForAttempt は試行回数（1始まり）に対するリトライ遅延を返します。
// テーブル範囲を超えた場合は最終エントリに固定されます。
func DelayForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(retryDelays) {
		attempt = len(retryDelays)
	}
	return retryDelays[attempt-1]
}

// quotaSignatures はプロバイダ側スロットリングを示す既知のエラーシグネチャです。
// 部分文字列による分類は壊れやすいため、このリストに限定して判定し、
// 一致しないエラーは保守的に「クォータ以外（リトライ対象）」として扱います。
var quotaSignatures = []string{
	"quota",
	"429",
	"rate limit",
	"ratelimit",
	"rate_limit",
	"too many requests",
	"resource exhausted",
}

// IsQuotaError はエラーメッセージがレート制限起因かどうかを分類します。
// この分類がバッチ処理のサーキットブレーカーのトリガーになります。
func IsQuotaError(message string) bool {
	lower := strings.ToLower(message)
	for _, signature := range quotaSignatures {
		if strings.Contains(lower, signature) {
			return true
		}
	}
	return false
}
