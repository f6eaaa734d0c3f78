package cardimg

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-magic-lair/internal/logx"
	"go-magic-lair/internal/model"
)

// Getter 为探测所需的最小 HTTP 能力，*fetch.Client 满足该接口。
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Probe 逐张请求卡图并返回 deck id → 最终状态。
// 超过 timeout 仍未完成的请求按 failed 处理；非 http(s) 地址（站内相对路径）不探测。
func Probe(ctx context.Context, cl Getter, decks []model.Deck, timeout time.Duration) map[string]State {
	out := make(map[string]State, len(decks))
	final := make(chan State, 1)
	tr := NewTracker(timeout, func(_ string, s State) {
		if s != Pending {
			final <- s
		}
	})
	defer tr.Stop()

	for _, d := range decks {
		if !isRemote(d.ImageURL) {
			continue
		}
		if !tr.Reset(d.ImageURL) {
			_, out[d.ID] = tr.State()
			continue
		}
		reqCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			if err := probeOne(reqCtx, cl, ref); err != nil {
				logx.Debugf("卡图加载失败：%s 错误=%v", ref, err)
				tr.Failed(ref)
				return
			}
			tr.Loaded(ref)
		}(d.ImageURL)

		var s State
		select {
		case s = <-final:
		case <-ctx.Done():
			s = Failed
			tr.Stop()
		}
		cancel()
		wg.Wait()
		out[d.ID] = s
		if s == Failed {
			logx.Warnf("卡图不可用：%s（%s）", d.Name, d.ImageURL)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return out
}

func probeOne(ctx context.Context, cl Getter, ref string) error {
	resp, err := cl.Get(ctx, ref)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return err
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
