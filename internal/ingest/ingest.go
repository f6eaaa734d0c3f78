// 包 ingest 将表格导出解析为卡组记录：
// - 引号感知的逗号切分（不还原转义引号）
// - 按 schema 版本校验列数与必填字段，非法行跳过并记录原因
// - 由年/月/日拼出 lastUpdated，缺失时回退到运行当天
// - extended 版本始终用卡片 id 与模板重建图片地址
// - 同名卡组只保留第一条
package ingest

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-magic-lair/internal/logx"
	"go-magic-lair/internal/model"
)

// Options 控制解析行为；零值表示 extended 版本、默认图片模板、当前时间。
type Options struct {
	Schema           Schema
	ImageURLTemplate string
	Now              func() time.Time
}

// DefaultImageURLTemplate 中的 {id} 会被替换为卡片 id。
const DefaultImageURLTemplate = "https://images.ygoprodeck.com/images/cards_cropped/{id}.jpg"

// Skip 描述一条被丢弃的数据行。
type Skip struct {
	Line   int
	Reason string
}

// Result 为一次解析的输出。
type Result struct {
	Decks      []model.Deck
	Rows       int
	Skipped    []Skip
	Duplicates int
}

// Stats 将解析结果汇总为运行统计。
func (r Result) Stats() model.RunStats {
	return model.RunStats{
		Rows:       r.Rows,
		Decks:      len(r.Decks),
		Skipped:    len(r.Skipped),
		Duplicates: r.Duplicates,
	}
}

// ParseCSV 解析 CSV 文本。该函数不会失败：非法行仅被跳过。
func ParseCSV(text string, opts Options) Result {
	return parse(splitCSV(text), opts)
}

// ParseRows 解析已切分的行（如 HTML 表格），首行视为表头。
func ParseRows(rows [][]string, opts Options) Result {
	if len(rows) < 2 {
		return Result{}
	}
	recs := make([]record, 0, len(rows)-1)
	for i, fields := range rows[1:] {
		if len(fields) == 0 {
			continue
		}
		recs = append(recs, record{line: i + 2, fields: fields})
	}
	return parse(recs, opts)
}

func parse(recs []record, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Rows: len(recs), Decks: make([]model.Deck, 0, len(recs))}
	skip := func(line int, format string, v ...any) {
		reason := fmt.Sprintf(format, v...)
		res.Skipped = append(res.Skipped, Skip{Line: line, Reason: reason})
		logx.Warnf("第 %d 行已跳过：%s", line, reason)
	}
	seen := make(map[string]int, len(recs))
	want := opts.Schema.Columns()
	short := func(rec record) {
		skip(rec.line, "列数不足 %d < %d", len(rec.fields), want)
	}
	today := opts.Now().UTC().Format(model.DateLayout)

	err := decodeRows(recs, opts.Schema, short, func(line int, r row) {
		if r.Name == "" {
			skip(line, "缺少卡组名称")
			return
		}
		d := model.Deck{
			ID:          model.DeckID(r.Name),
			Name:        r.Name,
			LastUpdated: composeDate(r.Year, r.Month, r.Day, today),
			Status:      r.Status,
		}
		switch opts.Schema {
		case SchemaExtended:
			if r.CardID == "" {
				skip(line, "缺少卡片 id：%s", r.Name)
				return
			}
			d.CardID = r.CardID
			d.ImageURL = strings.ReplaceAll(opts.ImageURLTemplate, "{id}", r.CardID)
		default:
			if r.ImageURL == "" {
				skip(line, "缺少图片地址：%s", r.Name)
				return
			}
			d.ImageURL = r.ImageURL
		}
		if first, dup := seen[r.Name]; dup {
			res.Duplicates++
			skip(line, "卡组名称重复：%s（首次出现于第 %d 行）", r.Name, first)
			return
		}
		seen[r.Name] = line
		res.Decks = append(res.Decks, d)
	})
	if err != nil {
		logx.Errorf("解析中止：%v", err)
	}
	logx.Infof("解析完成：数据行=%d 卡组=%d 跳过=%d", res.Rows, len(res.Decks), len(res.Skipped))
	return res
}

func (o Options) withDefaults() Options {
	if o.Schema == "" {
		o.Schema = SchemaExtended
	}
	if o.ImageURLTemplate == "" {
		o.ImageURLTemplate = DefaultImageURLTemplate
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// composeDate 拼接 YYYY-MM-DD，月/日左侧补零到两位；任一部分缺失时返回 fallback。
func composeDate(year, month, day, fallback string) string {
	if year == "" || month == "" || day == "" {
		return fallback
	}
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(s string) string {
	if n := utf8.RuneCountInString(s); n < 2 {
		return strings.Repeat("0", 2-n) + s
	}
	return s
}
