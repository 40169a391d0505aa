package registration

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
)

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeRejected
	outcomeFailed
	outcomeCancelled
)

// result 单次投递结果，取消是独立的结果而不是错误
type result struct {
	outcome outcome
	status  int
	message string
}

// send 发送一次注册请求。响应体会被读尽丢弃以便连接复用。
func send(ctx context.Context, client *http.Client, target string, payload []byte) result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return result{outcome: outcomeFailed, status: NoStatus, message: err.Error()}
	}
	req.Header.Set("Connection", "Keep-Alive")
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := client.Do(req)
	if err != nil {
		if isCancelled(ctx, err) {
			return result{outcome: outcomeCancelled, message: err.Error()}
		}
		return result{outcome: outcomeFailed, status: NoStatus, message: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return result{outcome: outcomeDelivered, status: resp.StatusCode}
	}
	return result{outcome: outcomeRejected, status: resp.StatusCode, message: reason(resp)}
}

// reason 提取状态行中的原因短语
func reason(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
