// 包 logx 是对标准库 slog 的薄封装，所有诊断信息输出到 stderr：
// - 支持级别/格式/语言/颜色配置
// - pretty 格式输出 [信息]/[警告] 或 [INFO]/[WARN] 标签
// - 通过 Debugf/Infof/Warnf/Errorf 暴露
package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// levelSilent 高于任何实际级别，用于关闭全部输出。
const levelSilent slog.Level = 100

// Init 以 stderr 为输出初始化全局日志器。
func Init(level, format, locale, colorMode string) {
	InitTo(os.Stderr, level, format, locale, colorMode)
}

// InitTo 与 Init 相同，但允许指定输出目标（测试中使用）。
func InitTo(w io.Writer, level, format, locale, colorMode string) {
	lv := parseLevel(level)
	opts := &slog.HandlerOptions{Level: lv}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = NewPrettyHandler(w, lv, locale, colorMode)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "silent", "off":
		return levelSilent
	default:
		return slog.LevelInfo
	}
}

func Debugf(format string, v ...any) { slog.Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { slog.Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { slog.Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { slog.Error(fmt.Sprintf(format, v...)) }

// PrettyHandler 面向人读的单行输出：时间 + 标签 + 消息 + k=v。
type PrettyHandler struct {
	w      io.Writer
	level  slog.Level
	locale string
	color  bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	group  string
}

// NewPrettyHandler 创建 PrettyHandler；w 为空时写 stderr。
func NewPrettyHandler(w io.Writer, lv slog.Level, locale, colorMode string) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	if locale == "" {
		locale = "zh-CN"
	}
	return &PrettyHandler{
		w:      w,
		level:  lv,
		locale: locale,
		color:  shouldColor(w, colorMode),
		mu:     &sync.Mutex{},
	}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.level < levelSilent && l >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(ts.Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')
	lbl := levelLabel(h.locale, r.Level)
	if h.color {
		lbl = colorize(lbl, r.Level)
	}
	buf.WriteString(lbl)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	attrs := append([]slog.Attr(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Key)
		buf.WriteByte('=')
		buf.WriteString(a.Value.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	cp := *h
	if cp.group == "" {
		cp.group = name
	} else {
		cp.group += "." + name
	}
	return &cp
}

func levelLabel(locale string, l slog.Level) string {
	zh := strings.HasPrefix(strings.ToLower(locale), "zh")
	switch l {
	case slog.LevelDebug:
		return pick(zh, "[调试]", "[DEBUG]")
	case slog.LevelInfo:
		return pick(zh, "[信息]", "[INFO]")
	case slog.LevelWarn:
		return pick(zh, "[警告]", "[WARN]")
	case slog.LevelError:
		return pick(zh, "[错误]", "[ERROR]")
	}
	return fmt.Sprintf("[L%d]", l)
}

func pick(zh bool, a, b string) string {
	if zh {
		return a
	}
	return b
}

// shouldColor 遵循 NO_COLOR 与 LOG_COLOR（auto 时仅对字符设备着色）。
func shouldColor(w io.Writer, mode string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "auto", "":
		if f, ok := w.(*os.File); ok {
			if fi, err := f.Stat(); err == nil {
				return fi.Mode()&os.ModeCharDevice != 0
			}
		}
	}
	return false
}

func colorize(s string, l slog.Level) string {
	code := "0"
	switch l {
	case slog.LevelDebug:
		code = "90"
	case slog.LevelInfo:
		code = "36"
	case slog.LevelWarn:
		code = "33"
	case slog.LevelError:
		code = "31"
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
