// 包 view 从只读快照推导展示视图：状态过滤、搜索、排序、最新日期标记与"最近变动"分组。
// 所有函数均不修改入参。
package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"go-magic-lair/internal/model"
)

// SortOption 为排序方式，取值与页面下拉框一致。
type SortOption string

const (
	SortAlphabetical SortOption = "alphabetical"
	SortLastUpdated  SortOption = "last-updated"
)

// ParseSort 解析排序方式，空串视为 alphabetical。
func ParseSort(s string) (SortOption, error) {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortAlphabetical:
		return SortAlphabetical, nil
	case SortLastUpdated:
		return SortLastUpdated, nil
	}
	return "", fmt.Errorf("unknown sort option %q (want %s|%s)", s, SortAlphabetical, SortLastUpdated)
}

// Options 为视图的瞬时状态，由调用方持有。
type Options struct {
	Sort  SortOption
	Query string
}

// Card 为画廊中的一张卡片。
type Card struct {
	model.Deck
	IsNew bool
}

// Changes 为最新日期上的状态变动。
type Changes struct {
	Free   []model.Deck
	Banned []model.Deck
}

// Empty 为真时不渲染 Last Changes 区块。
func (c Changes) Empty() bool { return len(c.Free) == 0 && len(c.Banned) == 0 }

// View 为页面与终端共用的推导结果。
type View struct {
	Cards   []Card
	Latest  string
	Changes Changes
}

// Empty 为真时页面显示 "No decks found"。
func (v View) Empty() bool { return len(v.Cards) == 0 }

// Derive 计算完整视图：活跃集 → 搜索 → 排序，并基于整个快照标记最新日期。
func Derive(decks []model.Deck, opts Options) View {
	latest := LatestDate(decks)
	sorted := Sort(Search(Active(decks), opts.Query), opts.Sort)
	cards := make([]Card, len(sorted))
	for i, d := range sorted {
		cards[i] = Card{Deck: d, IsNew: latest != "" && dateKey(d) == latest}
	}
	return View{
		Cards:   cards,
		Latest:  latest,
		Changes: LastChanges(decks, latest),
	}
}

// Active 排除状态为 FREE 的卡组。
func Active(decks []model.Deck) []model.Deck {
	return filter(decks, func(d model.Deck) bool { return !d.IsFree() })
}

// Search 按名称做大小写不敏感的子串匹配；空白查询不过滤。
func Search(decks []model.Deck, query string) []model.Deck {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(decks)
	}
	return filter(decks, func(d model.Deck) bool {
		return strings.Contains(strings.ToLower(d.Name), q)
	})
}

// Sort 返回排序后的新切片，两种排序均稳定。
// last-updated 按日期倒序，无法解析的日期排在最后。
func Sort(decks []model.Deck, opt SortOption) []model.Deck {
	out := slices.Clone(decks)
	switch opt {
	case SortLastUpdated:
		slices.SortStableFunc(out, func(a, b model.Deck) int {
			ta, oka := parseDate(a.LastUpdated)
			tb, okb := parseDate(b.LastUpdated)
			switch {
			case oka && okb:
				return tb.Compare(ta)
			case oka:
				return -1
			case okb:
				return 1
			}
			return 0
		})
	default:
		sortByName(out)
	}
	return out
}

// LatestDate 返回整个快照中最大的 lastUpdated（YYYY-MM-DD），没有合法日期时为空串。
func LatestDate(decks []model.Deck) string {
	var (
		newest time.Time
		found  bool
	)
	for _, d := range decks {
		t, ok := parseDate(d.LastUpdated)
		if ok && (!found || t.After(newest)) {
			newest, found = t, true
		}
	}
	if !found {
		return ""
	}
	return newest.Format(model.DateLayout)
}

// LastChanges 将最新日期上的卡组分为 "now free" 与 "now banned" 两组，组内按名称排序。
// 两种状态之外的卡组不进入任何一组。
func LastChanges(decks []model.Deck, latest string) Changes {
	var c Changes
	if latest == "" {
		return c
	}
	for _, d := range decks {
		if dateKey(d) != latest {
			continue
		}
		switch {
		case d.IsFree():
			c.Free = append(c.Free, d)
		case d.IsBanned():
			c.Banned = append(c.Banned, d)
		}
	}
	sortByName(c.Free)
	sortByName(c.Banned)
	return c
}

// sortByName 使用英文排序规则（与浏览器 localeCompare 接近），原地稳定排序。
func sortByName(decks []model.Deck) {
	if len(decks) < 2 {
		return
	}
	col := collate.New(language.English)
	slices.SortStableFunc(decks, func(a, b model.Deck) int {
		return col.CompareString(a.Name, b.Name)
	})
}

func filter(decks []model.Deck, keep func(model.Deck) bool) []model.Deck {
	out := make([]model.Deck, 0, len(decks))
	for _, d := range decks {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func dateKey(d model.Deck) string { return strings.TrimSpace(d.LastUpdated) }

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	return t, err == nil
}
