// 包 snapshot 负责快照文件 decks.json 的读写：
// 写入为整体替换（临时文件 + rename），读取时兼容历史格式。
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"go-magic-lair/internal/model"
)

// Write 将全部卡组写为单个 JSON 数组（两空格缩进），替换 path 处的旧内容。
// 写入失败时旧文件保持不变。
func Write(ctx context.Context, path string, decks []model.Deck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if decks == nil {
		decks = []model.Deck{}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(decks); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
