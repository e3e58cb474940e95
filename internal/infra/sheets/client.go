package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrBaseURLNotSet はブリッジURLが設定されていない場合のエラー
	ErrBaseURLNotSet = errors.New("sheets bridge URL not set: please set SHEETS_BRIDGE_URL environment variable")
	// ErrTokenNotSet は認証トークンが設定されていない場合のエラー
	ErrTokenNotSet = errors.New("sheets bridge token not set: please set SHEETS_BRIDGE_TOKEN environment variable")
	// ErrRowNotFound は対象行が存在しない場合のエラー
	ErrRowNotFound = errors.New("sheet row not found")
)

// Client はスプレッドシートAPIブリッジのHTTPクライアントです。
// ブリッジはワークスペースごとのスプレッドシートを行単位のRESTとして公開します。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option はClient構築時のオプション
type Option func(*Client)

// WithHTTPClient はHTTPクライアントを差し替える（テスト用）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout はAPI呼び出しのタイムアウトを設定する
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient は新しいClientを作成する
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, ErrBaseURLNotSet
	}
	if token == "" {
		return nil, ErrTokenNotSet
	}

	client := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Row はスプレッドシート上の作業指示書1行を表すDTOです
type Row struct {
	OrderNumber   string   `json:"orderNumber"`
	IssuerKey     string   `json:"issuerKey"`
	Status        string   `json:"status"`
	Description   string   `json:"description,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	ScheduledDate string   `json:"scheduledDate,omitempty"` // YYYY-MM-DD
	SignedAt      string   `json:"signedAt,omitempty"`      // RFC3339
	UpdatedAt     string   `json:"updatedAt,omitempty"`     // RFC3339
}

// SignedFields は照合時に変化するフィールドのみの部分更新ペイロードです
type SignedFields struct {
	Status   string `json:"status"`
	SignedAt string `json:"signedAt,omitempty"` // RFC3339
}

// ListRows は直近の行をlimit件まで取得します
func (c *Client) ListRows(ctx context.Context, spreadsheetID string, limit int) ([]Row, error) {
	endpoint := fmt.Sprintf("/v1/spreadsheets/%s/work-orders?limit=%d", url.PathEscape(spreadsheetID), limit)

	var result struct {
		Items []Row `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, err
	}

	return result.Items, nil
}

// GetRow は自然キーで1行を取得します
func (c *Client) GetRow(ctx context.Context, spreadsheetID, orderNumber, issuerKey string) (*Row, error) {
	endpoint := fmt.Sprintf("/v1/spreadsheets/%s/work-orders/%s?issuer=%s",
		url.PathEscape(spreadsheetID), url.PathEscape(orderNumber), url.QueryEscape(issuerKey))

	var row Row
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &row); err != nil {
		return nil, err
	}

	return &row, nil
}

// UpsertRow は自然キーで行をアップサートします
func (c *Client) UpsertRow(ctx context.Context, spreadsheetID string, row Row) error {
	endpoint := fmt.Sprintf("/v1/spreadsheets/%s/work-orders/%s",
		url.PathEscape(spreadsheetID), url.PathEscape(row.OrderNumber))
	return c.do(ctx, http.MethodPut, endpoint, row, nil)
}

// UpdateSignedFields は署名関連フィールドのみを部分更新します
func (c *Client) UpdateSignedFields(ctx context.Context, spreadsheetID, orderNumber, issuerKey string, fields SignedFields) error {
	endpoint := fmt.Sprintf("/v1/spreadsheets/%s/work-orders/%s/signed?issuer=%s",
		url.PathEscape(spreadsheetID), url.PathEscape(orderNumber), url.QueryEscape(issuerKey))
	return c.do(ctx, http.MethodPatch, endpoint, fields, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRowNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		// クォータ分類（IsQuotaError）が拾えるよう、メッセージに429を含める
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets bridge quota exceeded (HTTP 429): %s", string(detail))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets bridge returned HTTP %d: %s", resp.StatusCode, string(detail))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
