package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// reconstructMessage turns a message-shaped record into one newline-joined
// transcript. The content field may be a plain string or an ordered list of
// typed blocks; anything absent or wrong-typed contributes nothing.
func reconstructMessage(msg any) string {
	switch m := msg.(type) {
	case string:
		return strings.TrimSpace(m)
	case *record:
		return reconstructContent(m)
	}
	return ""
}

func reconstructContent(obj *record) string {
	if s, ok := obj.get("content").(string); ok {
		return strings.TrimSpace(s)
	}

	var chunks []string
	if blocks, ok := obj.get("content").([]any); ok {
		for _, item := range blocks {
			block, ok := item.(*record)
			if !ok {
				if s, ok := item.(string); ok {
					if t := strings.TrimSpace(s); t != "" {
						chunks = append(chunks, t)
					}
				}
				continue
			}
			typ, _ := block.get("type").(string)
			switch typ {
			case "text":
				if t, ok := block.get("text").(string); ok {
					if t = strings.TrimSpace(t); t != "" {
						chunks = append(chunks, t)
					}
				}
			case "thinking":
				if t, ok := block.get("thinking").(string); ok {
					if t = strings.TrimSpace(t); t != "" {
						chunks = append(chunks, t)
					}
				}
			case "tool_use":
				name, _ := block.get("name").(string)
				// only the ends are trimmed: a missing name keeps its gap
				line := strings.TrimSpace("[tool_use] " + name + " " + toolArg(block.get("input")))
				chunks = append(chunks, line)
			case "tool_result":
				if t := strings.TrimSpace(strings.Join(harvestText(block.get("content")), "\n")); t != "" {
					chunks = append(chunks, "[tool_result] "+t)
				}
			default:
				if t := strings.TrimSpace(strings.Join(harvestText(block), "\n")); t != "" {
					chunks = append(chunks, t)
				}
			}
		}
	}
	if len(chunks) > 0 {
		return strings.TrimSpace(strings.Join(chunks, "\n"))
	}
	return strings.TrimSpace(strings.Join(harvestText(obj), "\n"))
}

// toolArg renders a tool invocation argument: JSON for structured input,
// plain text otherwise.
func toolArg(v any) string {
	switch arg := v.(type) {
	case nil:
		return ""
	case string:
		return arg
	case *record, []any:
		b, err := json.Marshal(arg)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", arg)
	}
}

// progressText renders a progress record's data payload as one status line.
// Known payload shapes get a compact key=value form; anything else falls back
// to compact JSON.
func progressText(obj *record) string {
	data, ok := obj.get("data").(*record)
	if !ok {
		return ""
	}
	typ, _ := data.get("type").(string)
	switch typ {
	case "mcp_progress":
		return strings.TrimSpace(fmt.Sprintf("mcp_progress status=%s server=%s tool=%s elapsed=%s",
			fieldString(data.get("status")),
			fieldString(data.get("serverName")),
			fieldString(data.get("toolName")),
			fieldString(data.get("elapsedTimeMs"))))
	case "hook_progress":
		return strings.TrimSpace(fmt.Sprintf("hook_progress event=%s name=%s command=%s",
			fieldString(data.get("hookEvent")),
			fieldString(data.get("hookName")),
			fieldString(data.get("command"))))
	}
	return compactJSON(data, 0)
}

// fieldString renders a scalar JSON value for display; absent or structured
// values come out empty.
func fieldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

// compactJSON serializes v compactly, truncated to limit bytes when limit > 0.
func compactJSON(v any, limit int) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(b)
	if limit > 0 && len(s) > limit {
		s = s[:limit]
	}
	return s
}
