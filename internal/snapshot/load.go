package snapshot

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"go-magic-lair/internal/logx"
	"go-magic-lair/internal/model"
)

// storedDeck 覆盖快照出现过的全部字段：
// - 早期格式只有 name/imageUrl/lastUpdated
// - 下载图片的版本使用 imagePath（站内相对路径）
// - 当前格式带 id/cardId/status
type storedDeck struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CardID      string `json:"cardId"`
	ImageURL    string `json:"imageUrl"`
	ImagePath   string `json:"imagePath"`
	LastUpdated string `json:"lastUpdated"`
	Status      string `json:"status"`
}

// canonical 将任一历史格式映射为统一的 model.Deck，缺失字段为空串。
func (s storedDeck) canonical() model.Deck {
	d := model.Deck{
		ID:          s.ID,
		Name:        s.Name,
		CardID:      s.CardID,
		ImageURL:    s.ImageURL,
		LastUpdated: s.LastUpdated,
		Status:      s.Status,
	}
	if d.ImageURL == "" {
		d.ImageURL = s.ImagePath
	}
	if d.ID == "" && d.Name != "" {
		d.ID = model.DeckID(d.Name)
	}
	return d
}

// Load 读取快照；无名称的记录会被丢弃。
func Load(path string) ([]model.Deck, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return Decode(b)
}

// Decode 解析快照内容，见 Load。
func Decode(b []byte) ([]model.Deck, error) {
	var raw []storedDeck
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	out := make([]model.Deck, 0, len(raw))
	for i, s := range raw {
		d := s.canonical()
		if d.Name == "" {
			logx.Warnf("快照第 %d 条缺少名称，已忽略", i+1)
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
