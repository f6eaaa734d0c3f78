// 包 model 定义快照中的卡组记录与一次抓取运行的统计信息。
package model

import (
	"strings"

	"github.com/google/uuid"
)

// 状态哨兵值（比较时忽略大小写与首尾空白）。
const (
	StatusFree = "FREE"
	StatusBan  = "BAN"
)

// DateLayout 为 lastUpdated 的固定格式。
const DateLayout = "2006-01-02"

// Deck 为快照中的单条卡组记录，字段名即 JSON 键名。
type Deck struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	CardID      string `json:"cardId"`
	ImageURL    string `json:"imageUrl"`
	LastUpdated string `json:"lastUpdated"`
	Status      string `json:"status"`
}

// IsFree 判断状态是否为 FREE。
func (d Deck) IsFree() bool { return statusIs(d.Status, StatusFree) }

// IsBanned 判断状态是否为 BAN。
func (d Deck) IsBanned() bool { return statusIs(d.Status, StatusBan) }

func statusIs(s, want string) bool {
	return strings.EqualFold(strings.TrimSpace(s), want)
}

// DeckID 基于名称生成确定性的 UUIDv5，同名卡组在多次运行中得到相同 id。
func DeckID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("magic-lair:deck:"+name)).String()
}

// RunStats 为一次抓取运行的统计信息（仅用于日志，不写入快照）。
type RunStats struct {
	Rows       int
	Decks      int
	Skipped    int
	Duplicates int
	Output     string
}
