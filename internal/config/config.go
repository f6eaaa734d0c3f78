// 包 config 负责加载与校验应用配置（settings.yaml + 可选 .env + 环境变量），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认值（与线上站点保持一致）。
const (
	DefaultSpreadsheetID    = "1l70c7fsk1SFF3swyhdQuxLJqArZuB9pnsJjiI51axOY"
	DefaultImageURLTemplate = "https://images.ygoprodeck.com/images/cards_cropped/{id}.jpg"
	DefaultBasePath         = "/lair"
	DefaultOutput           = "data/decks.json"
)

// 环境变量名。
const (
	EnvBasePath       = "BASE_PATH"
	EnvBasePathLegacy = "NEXT_PUBLIC_BASE_PATH"
	EnvSourceURL      = "MAGIC_LAIR_CSV_URL"
)

// Config 为 settings.yaml 的顶层结构。
type Config struct {
	Source           Source `yaml:"SOURCE"`
	ImageURLTemplate string `yaml:"IMAGE_URL_TEMPLATE"`
	Output           string `yaml:"OUTPUT"`
	Site             Site   `yaml:"SITE"`
	Fetch            Fetch  `yaml:"FETCH"`
	Proxy            Proxy  `yaml:"PROXY"`
	LogLevel         string `yaml:"LOG_LEVEL"`
	LogFormat        string `yaml:"LOG_FORMAT"` // pretty|json|text
	LogLocale        string `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor         string `yaml:"LOG_COLOR"`  // auto|always|never
}

// Source 描述表格导出来源。
type Source struct {
	Type          string `yaml:"type"`   // csv|html
	Schema        string `yaml:"schema"` // extended|minimal
	SpreadsheetID string `yaml:"spreadsheet_id"`
	GID           string `yaml:"gid"`
	// URL 非空时直接使用，忽略 spreadsheet_id/gid
	URL          string `yaml:"url"`
	RowSelector  string `yaml:"row_selector"`
	CellSelector string `yaml:"cell_selector"`
}

// Site 描述静态页面输出。
type Site struct {
	OutDir string `yaml:"out_dir"`
	// BasePath 为 nil 表示未配置；显式空串表示站点根路径
	BasePath     *string       `yaml:"base_path"`
	Title        string        `yaml:"title"`
	Subtitle     string        `yaml:"subtitle"`
	ImageTimeout string        `yaml:"image_timeout"`
	ImageWait    time.Duration `yaml:"-"`
}

// Fetch 为下载超时与重试次数。
type Fetch struct {
	Timeout string        `yaml:"timeout"`
	Retry   int           `yaml:"retry"`
	Wait    time.Duration `yaml:"-"`
}

// Proxy 为可选的 HTTP/HTTPS 代理。
type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Load 读取 YAML（文件不存在时使用默认值），加载 envFiles 中存在的 .env，
// 再应用环境变量覆盖并校验。
func Load(path string, envFiles ...string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
			}
		}
	}
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env %s: %w", f, err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// applyEnv 环境变量优先于 YAML；BASE_PATH 已设置但为空时表示根路径。
func (c *Config) applyEnv() {
	for _, k := range []string{EnvBasePath, EnvBasePathLegacy} {
		if v, ok := os.LookupEnv(k); ok {
			c.Site.BasePath = &v
			break
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSourceURL)); v != "" {
		c.Source.URL = v
	}
}

// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
func (c *Config) Validate() error {
	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	switch c.Source.Type {
	case "":
		c.Source.Type = "csv"
	case "csv", "html":
	default:
		return fmt.Errorf("unsupported source type: %s", c.Source.Type)
	}
	c.Source.Schema = strings.ToLower(strings.TrimSpace(c.Source.Schema))
	switch c.Source.Schema {
	case "":
		c.Source.Schema = "extended"
	case "extended", "minimal":
	default:
		return fmt.Errorf("unsupported schema: %s", c.Source.Schema)
	}
	if c.Source.SpreadsheetID == "" {
		c.Source.SpreadsheetID = DefaultSpreadsheetID
	}
	if c.Source.GID == "" {
		c.Source.GID = "0"
	}
	if c.Source.RowSelector == "" {
		c.Source.RowSelector = "table tbody tr"
	}
	if c.Source.CellSelector == "" {
		c.Source.CellSelector = "td"
	}
	if c.ImageURLTemplate == "" {
		c.ImageURLTemplate = DefaultImageURLTemplate
	}
	if c.Source.Schema == "extended" && !strings.Contains(c.ImageURLTemplate, "{id}") {
		return errors.New("IMAGE_URL_TEMPLATE must contain {id}")
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Site.OutDir == "" {
		c.Site.OutDir = "out"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Magic Lair"
	}
	if c.Site.Subtitle == "" {
		c.Site.Subtitle = "HOTU banlist"
	}
	var err error
	if c.Site.ImageWait, err = parseDuration(c.Site.ImageTimeout, 5*time.Second); err != nil {
		return fmt.Errorf("SITE.image_timeout: %w", err)
	}
	if c.Fetch.Wait, err = parseDuration(c.Fetch.Timeout, 25*time.Second); err != nil {
		return fmt.Errorf("FETCH.timeout: %w", err)
	}
	if c.Fetch.Retry < 0 {
		return errors.New("FETCH.retry must be >= 0")
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// BasePath 返回去掉末尾 "/" 的静态资源前缀。
func (c *Config) BasePath() string {
	p := DefaultBasePath
	if c.Site.BasePath != nil {
		p = *c.Site.BasePath
	}
	return strings.TrimRight(strings.TrimSpace(p), "/")
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be > 0, got %s", s)
	}
	return d, nil
}
