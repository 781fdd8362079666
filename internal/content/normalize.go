// Package content handles EditorJS block documents.
package content

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EditorVersion is stamped on documents that arrive without one
const EditorVersion = "2.28.2"

// Block is a single EditorJS block
type Block struct {
	ID   string                 `json:"id,omitempty"`
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Document is the canonical EditorJS document
type Document struct {
	Time    int64   `json:"time"`
	Blocks  []Block `json:"blocks"`
	Version string  `json:"version"`
}

var now = time.Now

func emptyDocument() Document {
	return Document{Time: now().UnixMilli(), Blocks: []Block{}, Version: EditorVersion}
}

func textDocument(text string) Document {
	doc := emptyDocument()
	doc.Blocks = append(doc.Blocks, Block{Type: "paragraph", Data: map[string]interface{}{"text": text}})
	return doc
}

// Normalize turns whatever was stored or submitted as blog content into a
// Document. It accepts nil, JSON text (as string, []byte or json.RawMessage),
// plain text, decoded JSON values and Documents, and never fails: input that
// is not a block document becomes a single paragraph holding the raw text.
// Tables are rewritten from the legacy rows[].cells[] shape to content[][].
func Normalize(input interface{}) Document {
	switch v := input.(type) {
	case nil:
		return emptyDocument()
	case Document:
		return fromDocument(v)
	case *Document:
		if v == nil {
			return emptyDocument()
		}
		return fromDocument(*v)
	case json.RawMessage:
		return fromText(string(v), true)
	case []byte:
		return fromText(string(v), true)
	case string:
		return fromText(v, true)
	case map[string]interface{}:
		return fromMap(v)
	case []interface{}:
		doc := emptyDocument()
		doc.Blocks = blocksFrom(v)
		return doc
	default:
		return textDocument(fmt.Sprint(v))
	}
}

// NormalizeJSON is Normalize followed by encoding; the result is always valid JSON
func NormalizeJSON(input interface{}) json.RawMessage {
	data, err := json.Marshal(Normalize(input))
	if err != nil {
		data, _ = json.Marshal(emptyDocument())
	}
	return data
}

func fromText(s string, unwrap bool) Document {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "null" {
		return emptyDocument()
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return textDocument(s)
	}

	switch v := decoded.(type) {
	case map[string]interface{}:
		return fromMap(v)
	case []interface{}:
		doc := emptyDocument()
		doc.Blocks = blocksFrom(v)
		return doc
	case string:
		// double-encoded document
		if unwrap {
			return fromText(v, false)
		}
		return textDocument(v)
	default:
		return textDocument(s)
	}
}

func fromMap(m map[string]interface{}) Document {
	doc := emptyDocument()
	if t, ok := m["time"].(float64); ok && t > 0 {
		doc.Time = int64(t)
	}
	if v, ok := m["version"].(string); ok && v != "" {
		doc.Version = v
	}
	if blocks, ok := m["blocks"].([]interface{}); ok {
		doc.Blocks = blocksFrom(blocks)
	}
	return doc
}

func fromDocument(d Document) Document {
	out := d
	if out.Time <= 0 {
		out.Time = now().UnixMilli()
	}
	if out.Version == "" {
		out.Version = EditorVersion
	}
	out.Blocks = make([]Block, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Type == "" {
			continue
		}
		out.Blocks = append(out.Blocks, normalizeBlock(b))
	}
	return out
}

func blocksFrom(items []interface{}) []Block {
	blocks := make([]Block, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		blockType, _ := m["type"].(string)
		if blockType == "" {
			continue
		}
		data, _ := m["data"].(map[string]interface{})
		if data == nil {
			data = map[string]interface{}{}
		}
		id, _ := m["id"].(string)
		blocks = append(blocks, normalizeBlock(Block{ID: id, Type: blockType, Data: data}))
	}
	return blocks
}

func normalizeBlock(b Block) Block {
	if b.Data == nil {
		b.Data = map[string]interface{}{}
	}
	if b.Type == "table" {
		b.Data = normalizeTable(b.Data)
	}
	return b
}

// normalizeTable converts rows[].cells[] into content[][] of strings
func normalizeTable(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k != "rows" {
			out[k] = v
		}
	}

	var content [][]string
	if rows, ok := data["content"].([]interface{}); ok {
		for _, row := range rows {
			cells, _ := row.([]interface{})
			content = append(content, cellStrings(cells))
		}
	} else if rows, ok := data["content"].([][]string); ok {
		content = rows
	} else if rows, ok := data["rows"].([]interface{}); ok {
		for _, row := range rows {
			var cells []interface{}
			switch r := row.(type) {
			case map[string]interface{}:
				cells, _ = r["cells"].([]interface{})
			case []interface{}:
				cells = r
			}
			content = append(content, cellStrings(cells))
		}
	}
	if content == nil {
		content = [][]string{}
	}
	out["content"] = content
	return out
}

func cellStrings(cells []interface{}) []string {
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		switch c := cell.(type) {
		case string:
			out = append(out, c)
		case map[string]interface{}:
			if s, ok := c["content"].(string); ok {
				out = append(out, s)
			} else if s, ok := c["text"].(string); ok {
				out = append(out, s)
			} else {
				out = append(out, "")
			}
		case nil:
			out = append(out, "")
		default:
			out = append(out, fmt.Sprint(c))
		}
	}
	return out
}
