package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
)

// Schema 为表格列布局的版本。
type Schema string

const (
	// SchemaMinimal：deck_name, image_url, year, month, day
	SchemaMinimal Schema = "minimal"
	// SchemaExtended：deck_name, card_id, image_url(忽略), year, month, day, status
	SchemaExtended Schema = "extended"
)

var headers = map[Schema][]string{
	SchemaMinimal: {"deck_name", "image_url", "last_updated_year", "last_updated_month", "last_updated_day"},
	SchemaExtended: {"deck_name", "card_id", "image_url", "last_updated_year", "last_updated_month",
		"last_updated_day", "status"},
}

// ParseSchema 解析配置中的 schema 名称，空串视为 extended。
func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaExtended:
		return SchemaExtended, nil
	case SchemaMinimal:
		return SchemaMinimal, nil
	}
	return "", fmt.Errorf("unknown schema %q", s)
}

// Columns 返回该版本要求的最少列数。
func (s Schema) Columns() int { return len(headers[s]) }

// row 为按位置绑定后的一行；minimal 版本中 CardID/Status 恒为空。
type row struct {
	Name     string `csv:"deck_name"`
	CardID   string `csv:"card_id"`
	ImageURL string `csv:"image_url"`
	Year     string `csv:"last_updated_year"`
	Month    string `csv:"last_updated_month"`
	Day      string `csv:"last_updated_day"`
	Status   string `csv:"status"`
}

func (r *row) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.CardID = strings.TrimSpace(r.CardID)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Year = strings.TrimSpace(r.Year)
	r.Month = strings.TrimSpace(r.Month)
	r.Day = strings.TrimSpace(r.Day)
	r.Status = strings.TrimSpace(r.Status)
}

type record struct {
	line   int
	fields []string
}

// recordReader 把已切分的记录按固定宽度交给 csvutil：
// 列数不足的记录直接跳过（通过 short 回调上报），多余列被截断。
type recordReader struct {
	recs  []record
	width int
	next  int
	cur   int
	short func(rec record)
}

func (r *recordReader) Read() ([]string, error) {
	for r.next < len(r.recs) {
		rec := r.recs[r.next]
		r.next++
		if len(rec.fields) < r.width {
			r.short(rec)
			continue
		}
		r.cur = rec.line
		return rec.fields[:r.width], nil
	}
	return nil, io.EOF
}

var _ csvutil.Reader = (*recordReader)(nil)

// decodeRows 使用版本表头按位置解码；fn 对每条完整记录调用一次。
func decodeRows(recs []record, schema Schema, short func(record), fn func(line int, r row)) error {
	rr := &recordReader{recs: recs, width: schema.Columns(), short: short}
	dec, err := csvutil.NewDecoder(rr, headers[schema]...)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	for {
		var r row
		if err := dec.Decode(&r); err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("decode line %d: %w", rr.cur, err)
		}
		r.trim()
		fn(rr.cur, r)
	}
}
