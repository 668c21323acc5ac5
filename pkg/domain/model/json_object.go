// 指示: miu200521358
package model

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// rawObject は未知フィールドを保持するための JSON オブジェクト表現。
type rawObject map[string]json.RawMessage

func decodeRawObject(data []byte) (rawObject, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("JSON オブジェクトではありません")
	}
	raw := rawObject{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// take は key を取り出して dst に復号する。null や欠落は false。
func (o rawObject) take(key string, dst any) (bool, error) {
	value, ok := o[key]
	if !ok {
		return false, nil
	}
	delete(o, key)
	if isJSONNull(value) {
		return false, nil
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}

// takeNumber は数値でない値を無視して数値を取り出す。
func (o rawObject) takeNumber(key string, dst *float64) {
	value, ok := o[key]
	if !ok {
		return
	}
	var number float64
	if err := json.Unmarshal(value, &number); err != nil {
		// 数値でない値は未知フィールドとして残す。
		return
	}
	delete(o, key)
	*dst = number
}

// rest は残りのフィールドを返す。空の場合は nil。
func (o rawObject) rest() map[string]json.RawMessage {
	if len(o) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(o))
	for key, value := range o {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// objectWriter は既知フィールドを固定順で、その後に未知フィールドを名前順で書き出す。
type objectWriter struct {
	buf   bytes.Buffer
	count int
	err   error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) writeKey(key string) {
	if w.count > 0 {
		w.buf.WriteByte(',')
	}
	w.count++
	encodedKey, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(encodedKey)
	w.buf.WriteByte(':')
}

// field は値を JSON 化して書き出す。
func (w *objectWriter) field(key string, value any) {
	if w.err != nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	w.writeKey(key)
	w.buf.Write(encoded)
}

// raw は復号済みの値をそのまま書き出す。
func (w *objectWriter) raw(key string, value json.RawMessage) {
	if w.err != nil {
		return
	}
	w.writeKey(key)
	if len(bytes.TrimSpace(value)) == 0 {
		w.buf.WriteString("null")
		return
	}
	w.buf.Write(value)
}

// extras は skip に含まれない未知フィールドを名前順で書き出す。
func (w *objectWriter) extras(extra map[string]json.RawMessage, skip ...string) {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		skipped := false
		for _, s := range skip {
			if key == s {
				skipped = true
				break
			}
		}
		if !skipped {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.raw(key, extra[key])
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
