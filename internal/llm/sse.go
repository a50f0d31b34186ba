package llm

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// sseReader SSE (Server-Sent Events) 事件读取器
// 以双换行为事件边界切分，取出 data: 行内容
type sseReader struct {
	scanner *bufio.Scanner
}

// newSSEReader 创建 SSE 读取器
func newSSEReader(r io.Reader) *sseReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitSSEEvent)
	return &sseReader{scanner: scanner}
}

// sseEvent 一个 SSE 事件
type sseEvent struct {
	Event string // event: 字段，可为空（OpenAI 风格只有 data 行）
	Data  string // data: 行内容，多行拼接
}

// Next 读取下一个事件，流结束返回 io.EOF
func (p *sseReader) Next() (*sseEvent, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	eventText := p.scanner.Text()
	if strings.TrimSpace(eventText) == "" {
		// 空事件，继续读取下一个
		return p.Next()
	}

	var ev sseEvent
	var data strings.Builder

	for _, line := range strings.Split(eventText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			ev.Event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") {
			data.WriteString(strings.TrimPrefix(line, "data: "))
			continue
		}
		// 忽略 id:, retry:, 注释行等字段
	}

	ev.Data = data.String()
	return &ev, nil
}

// splitSSEEvent 自定义分隔函数，以双换行为事件分隔符
func splitSSEEvent(data []byte, atEOF bool) (advance int, token []byte, err error) {
	delimiter := []byte("\n\n")
	if i := bytes.Index(data, delimiter); i >= 0 {
		return i + len(delimiter), data[0:i], nil
	}

	if atEOF {
		if len(data) > 0 {
			// 返回剩余数据
			return len(data), data, nil
		}
		return 0, nil, nil
	}

	// 请求更多数据
	return 0, nil, nil
}
