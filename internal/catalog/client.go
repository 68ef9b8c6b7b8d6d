// Package catalog は外部映画カタログAPIのクライアントを提供する。
//
// ネットワーク障害・非成功レスポンスはすべて単一のErrFetchFailedに
// 正規化する。リトライはこの層では行わない（必要なら上位層の責務）。
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/kenta/reelvault/internal/model"
)

// ErrFetchFailed はカタログからの取得失敗を示す。
// 「該当なし」と「取得エラー」は区別しない。
var ErrFetchFailed = errors.New("catalog: fetch failed")

const (
	// defaultBaseURL は外部カタログAPIのエンドポイント。
	defaultBaseURL = "https://api.themoviedb.org/3"
	// カタログAPIの許容レート（40req/10s）に合わせた送信側スロットル。
	defaultRequestRate  = rate.Limit(4)
	defaultRequestBurst = 8
)

// Client は外部映画カタログAPIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, apiKey string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		limiter:    rate.NewLimiter(defaultRequestRate, defaultRequestBurst),
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// SetBaseURL はカタログAPIのベースURLを差し替える。テストおよびプロキシ構成用。
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = baseURL
	}
}

// movieDocument はカタログAPIの映画レスポンスを表す。
type movieDocument struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
}

// toModel はカタログのレスポンスをドメインモデルに変換する。
func (d movieDocument) toModel() model.Movie {
	return model.Movie{
		ID:          d.ID,
		Title:       d.Title,
		ReleaseDate: d.ReleaseDate,
		Overview:    d.Overview,
		PosterURL:   d.PosterPath,
	}
}

// searchDocument はカタログAPIの検索レスポンスを表す。
type searchDocument struct {
	Page         int             `json:"page"`
	Results      []movieDocument `json:"results"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
}

// GetMovie は映画IDでカタログから映画メタデータを取得する。
func (c *Client) GetMovie(ctx context.Context, movieID int64) (*model.Movie, error) {
	endpoint := fmt.Sprintf("%s/movie/%d", c.baseURL, movieID)
	reqURL, err := c.buildURL(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var doc movieDocument
	if err := c.getJSON(ctx, reqURL, &doc); err != nil {
		return nil, err
	}

	movie := doc.toModel()
	return &movie, nil
}

// SearchMovies はサニタイズ済みクエリでカタログの検索APIを呼び出す。
func (c *Client) SearchMovies(ctx context.Context, query string) (*model.MovieSearchResult, error) {
	reqURL, err := c.buildURL(c.baseURL+"/search/movie", map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var doc searchDocument
	if err := c.getJSON(ctx, reqURL, &doc); err != nil {
		return nil, err
	}

	result := &model.MovieSearchResult{
		Page:         doc.Page,
		Results:      make([]model.Movie, 0, len(doc.Results)),
		TotalPages:   doc.TotalPages,
		TotalResults: doc.TotalResults,
	}
	for _, d := range doc.Results {
		result.Results = append(result.Results, d.toModel())
	}

	return result, nil
}

// buildURL はAPIキーと追加パラメータを付与したリクエストURLを構築する。
func (c *Client) buildURL(endpoint string, params map[string]string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse endpoint URL: %w", err)
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// getJSON はGETリクエストを実行し、レスポンスJSONをデコードする。
// 失敗はすべてErrFetchFailedに正規化する。
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	// 送信側スロットル: カタログAPIのレート制限を尊重する
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("catalog returned non-success status",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("catalog response parse failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return nil
}
