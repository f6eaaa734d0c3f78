package ingest

import "strings"

// SplitLine 按逗号切分一行：双引号切换"引号内"状态且本身被丢弃，
// 引号内的逗号不作分隔。连续两个双引号不会被还原为一个（"a""b" → ab）。
func SplitLine(line string) []string {
	var (
		cols    []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			cols = append(cols, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(cols, cur.String())
}

// splitCSV 将整段文本切成带行号的记录：按 \n 分行并去除首尾空白，
// 丢弃首行（表头）与空行。行号从 1 开始，与原文件一致。
func splitCSV(text string) []record {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil
	}
	out := make([]record, 0, len(lines)-1)
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, record{line: i + 2, fields: SplitLine(line)})
	}
	return out
}
