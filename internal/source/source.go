// 包 source 负责定位并下载表格导出：
// - csv：Google Sheets 的 export?format=csv
// - html：发布为网页的表格（pubhtml），按选择器抽取单元格
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Kind 为导出格式。
type Kind string

const (
	KindCSV  Kind = "csv"
	KindHTML Kind = "html"
)

// MaxBody 限制下载大小，防止异常响应占满内存；超出时整次下载视为失败。
const MaxBody = 16 << 20

// ErrTooLarge 表示响应体超过 MaxBody。
var ErrTooLarge = errors.New("response body too large")

// Getter 为下载所需的最小能力，*fetch.Client 满足该接口。
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// ExportURL 由表格 id 与 gid 拼出导出地址。
func ExportURL(kind Kind, spreadsheetID, gid string) string {
	base := "https://docs.google.com/spreadsheets/d/" + url.PathEscape(spreadsheetID)
	q := url.Values{}
	q.Set("gid", gid)
	if kind == KindHTML {
		q.Set("single", "true")
		return base + "/pubhtml?" + q.Encode()
	}
	q.Set("format", "csv")
	return base + "/export?" + q.Encode()
}

// FetchText 下载导出内容并以字符串返回；网络错误或非 2xx 均返回错误。
func FetchText(ctx context.Context, cl Getter, rawURL string) (string, error) {
	b, err := fetchBody(ctx, cl, rawURL)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fetchBody(ctx context.Context, cl Getter, rawURL string) ([]byte, error) {
	resp, err := cl.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", rawURL, err)
	}
	if len(b) > MaxBody {
		return nil, fmt.Errorf("read spreadsheet %s: %w (limit %d bytes)", rawURL, ErrTooLarge, MaxBody)
	}
	return b, nil
}
