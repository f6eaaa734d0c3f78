// 包 pipeline 负责一次完整的抓取流程：下载表格导出 → 解析 → 整体写入快照。
// 下载失败时直接返回错误，不触碰已有快照。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go-magic-lair/internal/config"
	"go-magic-lair/internal/ingest"
	"go-magic-lair/internal/logx"
	"go-magic-lair/internal/model"
	"go-magic-lair/internal/snapshot"
	"go-magic-lair/internal/source"
)

// Runner 持有配置与 HTTP 客户端。
type Runner struct {
	cfg    *config.Config
	client source.Getter
	now    func() time.Time
}

// New 创建 Runner；now 为空时使用 time.Now。
func New(cfg *config.Config, cl source.Getter, now func() time.Time) *Runner {
	if now == nil {
		now = time.Now
	}
	return &Runner{cfg: cfg, client: cl, now: now}
}

// SourceURL 返回本次运行实际请求的地址。
func (r *Runner) SourceURL() string {
	if r.cfg.Source.URL != "" {
		return r.cfg.Source.URL
	}
	return source.ExportURL(source.Kind(r.cfg.Source.Type), r.cfg.Source.SpreadsheetID, r.cfg.Source.GID)
}

// Run 执行一轮抓取并写入 output（为空时使用配置中的路径）。
func (r *Runner) Run(ctx context.Context, output string) (model.RunStats, error) {
	if output == "" {
		output = r.cfg.Output
	}
	schema, err := ingest.ParseSchema(r.cfg.Source.Schema)
	if err != nil {
		return model.RunStats{}, err
	}
	opts := ingest.Options{
		Schema:           schema,
		ImageURLTemplate: r.cfg.ImageURLTemplate,
		Now:              r.now,
	}

	u := r.SourceURL()
	logx.Infof("开始下载表格：%s", u)
	var res ingest.Result
	switch source.Kind(r.cfg.Source.Type) {
	case source.KindHTML:
		rows, err := source.FetchTable(ctx, r.client, u, source.Selectors{
			Row:  r.cfg.Source.RowSelector,
			Cell: r.cfg.Source.CellSelector,
		})
		if err != nil {
			return model.RunStats{}, err
		}
		res = ingest.ParseRows(rows, opts)
	default:
		text, err := source.FetchText(ctx, r.client, u)
		if err != nil {
			return model.RunStats{}, err
		}
		res = ingest.ParseCSV(text, opts)
	}

	for i, d := range res.Decks {
		logx.Debugf("[%d/%d] %s（%s）", i+1, len(res.Decks), d.Name, d.Status)
	}
	if err := snapshot.Write(ctx, output, res.Decks); err != nil {
		return model.RunStats{}, fmt.Errorf("write snapshot: %w", err)
	}
	st := res.Stats()
	st.Output = output
	return st, nil
}
