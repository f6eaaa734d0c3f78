package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors 描述 HTML 表格的抽取规则。
// Cell 语法：
// - 文本：".x" 或 "."（取单元格自身文本）
// - 属性："img@src" / "@title"
// - 回退：使用 "||" 连接多个候选，按先后尝试
type Selectors struct {
	Row  string
	Cell string
	// Value 为单元格取值表达式，默认 ".||img@src"
	Value string
}

func (s Selectors) withDefaults() Selectors {
	if s.Row == "" {
		s.Row = "table tbody tr"
	}
	if s.Cell == "" {
		s.Cell = "td"
	}
	if s.Value == "" {
		s.Value = ".||img@src"
	}
	return s
}

// FetchTable 下载发布页并按行返回单元格文本，首行为表头。
func FetchTable(ctx context.Context, cl Getter, rawURL string, sel Selectors) ([][]string, error) {
	b, err := fetchBody(ctx, cl, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet html: %w", err)
	}
	return tableRows(doc, sel.withDefaults()), nil
}

func tableRows(doc *goquery.Document, sel Selectors) [][]string {
	var rows [][]string
	doc.Find(sel.Row).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find(sel.Cell)
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellValue(td, sel.Value))
		})
		rows = append(rows, row)
	})
	return rows
}

// cellValue 依次尝试 "||" 分隔的表达式，返回第一个非空值。
func cellValue(scope *goquery.Selection, expr string) string {
	for _, p := range strings.Split(expr, "||") {
		if v := cellValueSingle(scope, strings.TrimSpace(p)); v != "" {
			return v
		}
	}
	return ""
}

func cellValueSingle(scope *goquery.Selection, expr string) string {
	switch {
	case expr == "":
		return ""
	case expr == ".":
		return strings.TrimSpace(scope.Text())
	}
	if at := strings.Index(expr, "@"); at != -1 {
		target := scope
		if s := strings.TrimSpace(expr[:at]); s != "" {
			target = scope.Find(s).First()
		}
		val, _ := target.Attr(strings.TrimSpace(expr[at+1:]))
		return strings.TrimSpace(val)
	}
	return strings.TrimSpace(scope.Find(expr).First().Text())
}
