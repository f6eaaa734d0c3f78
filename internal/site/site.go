// 包 site 将快照渲染为静态 HTML 页面：默认视图在构建时生成，
// 搜索与排序切换由页面内的小段脚本完成。
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-magic-lair/internal/cardimg"
	"go-magic-lair/internal/model"
	"go-magic-lair/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Options 为渲染参数。
type Options struct {
	BasePath string
	Title    string
	Subtitle string
	// ImageStates 为构建时探测的结果（deck id → 状态），可为空
	ImageStates  map[string]cardimg.State
	ImageTimeout time.Duration
}

type cardData struct {
	model.Deck
	Image string
	Date  string
	State string
	IsNew bool
}

type pageData struct {
	Title        string
	Subtitle     string
	BasePath     string
	Empty        bool
	Alphabetical []cardData
	LastUpdated  []cardData
	Free         []cardData
	Banned       []cardData
	HasChanges   bool
	BothChanges  bool
	TimeoutMS    int64
}

// Render 写出完整 HTML 文档。
func Render(w io.Writer, decks []model.Deck, opts Options) error {
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = cardimg.DefaultTimeout
	}
	alpha := view.Derive(decks, view.Options{Sort: view.SortAlphabetical})
	recent := view.Derive(decks, view.Options{Sort: view.SortLastUpdated})

	p := pageData{
		Title:        opts.Title,
		Subtitle:     opts.Subtitle,
		BasePath:     opts.BasePath,
		Empty:        alpha.Empty(),
		Alphabetical: cards(alpha.Cards, opts),
		LastUpdated:  cards(recent.Cards, opts),
		Free:         plain(alpha.Changes.Free, opts),
		Banned:       plain(alpha.Changes.Banned, opts),
		HasChanges:   !alpha.Changes.Empty(),
		BothChanges:  len(alpha.Changes.Free) > 0 && len(alpha.Changes.Banned) > 0,
		TimeoutMS:    opts.ImageTimeout.Milliseconds(),
	}
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// Build 在 dir 下生成 index.html。
func Build(dir string, decks []model.Deck, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, decks, opts); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func cards(in []view.Card, opts Options) []cardData {
	out := make([]cardData, len(in))
	for i, c := range in {
		out[i] = card(c.Deck, opts)
		out[i].IsNew = c.IsNew
	}
	return out
}

// plain 用于"最近变动"区块，不显示 NEW 标记。
func plain(in []model.Deck, opts Options) []cardData {
	out := make([]cardData, len(in))
	for i, d := range in {
		out[i] = card(d, opts)
	}
	return out
}

func card(d model.Deck, opts Options) cardData {
	state := cardimg.Pending
	if s, ok := opts.ImageStates[d.ID]; ok && s == cardimg.Failed {
		state = s
	}
	return cardData{
		Deck:  d,
		Image: assetURL(opts.BasePath, d.ImageURL),
		Date:  displayDate(d.LastUpdated),
		State: state.String(),
	}
}

// assetURL 对站内相对路径加上 basePath，外部地址原样返回。
func assetURL(base, ref string) string {
	switch {
	case ref == "", strings.Contains(ref, "://"), strings.HasPrefix(ref, "//"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return base + ref
	}
	return base + "/" + ref
}

// displayDate 按 en-US 短格式显示（Mar 7, 2024）；无法解析时原样返回。
func displayDate(s string) string {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
