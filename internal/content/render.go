package content

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RenderHTML converts a document to HTML. Inline markup inside text fields is
// reduced to a small allow-list; everything else is escaped.
func RenderHTML(doc Document) string {
	var b strings.Builder
	for _, block := range doc.Blocks {
		b.WriteString(renderBlock(block))
	}
	return b.String()
}

func renderBlock(block Block) string {
	d := block.Data

	switch block.Type {
	case "paragraph":
		text := str(d, "text")
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return fmt.Sprintf("<p>%s</p>\n", sanitizeInline(text))
	case "header":
		level := 2
		if lvl, ok := d["level"].(float64); ok && lvl >= 1 && lvl <= 6 {
			level = int(lvl)
		}
		return fmt.Sprintf("<h%d>%s</h%d>\n", level, sanitizeInline(str(d, "text")), level)
	case "list":
		tag := "ul"
		if str(d, "style") == "ordered" {
			tag = "ol"
		}
		items, _ := d["items"].([]interface{})
		return renderList(tag, items)
	case "checklist":
		items, _ := d["items"].([]interface{})
		var b strings.Builder
		b.WriteString("<ul class=\"checklist\">\n")
		for _, item := range items {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			class := ""
			if checked, _ := m["checked"].(bool); checked {
				class = ` class="checked"`
			}
			fmt.Fprintf(&b, "<li%s>%s</li>\n", class, sanitizeInline(str(m, "text")))
		}
		b.WriteString("</ul>\n")
		return b.String()
	case "quote":
		var b strings.Builder
		fmt.Fprintf(&b, "<blockquote>\n<p>%s</p>\n", sanitizeInline(str(d, "text")))
		if caption := str(d, "caption"); caption != "" {
			fmt.Fprintf(&b, "<cite>%s</cite>\n", sanitizeInline(caption))
		}
		b.WriteString("</blockquote>\n")
		return b.String()
	case "code":
		return fmt.Sprintf("<pre><code>%s</code></pre>\n", html.EscapeString(str(d, "code")))
	case "delimiter":
		return "<hr>\n"
	case "image":
		src := str(d, "url")
		if file, ok := d["file"].(map[string]interface{}); ok && src == "" {
			src = str(file, "url")
		}
		if !safeURL(src) {
			return ""
		}
		caption := str(d, "caption")
		var b strings.Builder
		fmt.Fprintf(&b, "<figure>\n<img src=\"%s\" alt=\"%s\">\n", html.EscapeString(src), html.EscapeString(PlainText(caption)))
		if caption != "" {
			fmt.Fprintf(&b, "<figcaption>%s</figcaption>\n", sanitizeInline(caption))
		}
		b.WriteString("</figure>\n")
		return b.String()
	case "table":
		return renderTable(d)
	case "embed":
		src := str(d, "embed")
		if !strings.HasPrefix(src, "https://") {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "<figure class=\"embed embed-%s\">\n<iframe src=\"%s\" frameborder=\"0\" allowfullscreen></iframe>\n",
			html.EscapeString(str(d, "service")), html.EscapeString(src))
		if caption := str(d, "caption"); caption != "" {
			fmt.Fprintf(&b, "<figcaption>%s</figcaption>\n", sanitizeInline(caption))
		}
		b.WriteString("</figure>\n")
		return b.String()
	case "warning":
		return fmt.Sprintf("<aside class=\"warning\">\n<strong>%s</strong>\n<p>%s</p>\n</aside>\n",
			sanitizeInline(str(d, "title")), sanitizeInline(str(d, "message")))
	default:
		// Unknown block types fall back to their text, if any
		if text := str(d, "text"); text != "" {
			return fmt.Sprintf("<p>%s</p>\n", sanitizeInline(text))
		}
		return ""
	}
}

// renderList handles flat string items and nested {content, items} items
func renderList(tag string, items []interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>\n", tag)
	for _, item := range items {
		switch it := item.(type) {
		case string:
			fmt.Fprintf(&b, "<li>%s</li>\n", sanitizeInline(it))
		case map[string]interface{}:
			b.WriteString("<li>")
			b.WriteString(sanitizeInline(str(it, "content")))
			if nested, ok := it["items"].([]interface{}); ok && len(nested) > 0 {
				b.WriteString("\n")
				b.WriteString(renderList(tag, nested))
			}
			b.WriteString("</li>\n")
		}
	}
	fmt.Fprintf(&b, "</%s>\n", tag)
	return b.String()
}

func renderTable(d map[string]interface{}) string {
	var rows [][]string
	switch c := d["content"].(type) {
	case [][]string:
		rows = c
	case []interface{}:
		for _, row := range c {
			cells, _ := row.([]interface{})
			rows = append(rows, cellStrings(cells))
		}
	}
	if len(rows) == 0 {
		return ""
	}

	withHeadings, _ := d["withHeadings"].(bool)

	var b strings.Builder
	b.WriteString("<table>\n")
	for i, row := range rows {
		cell := "td"
		if withHeadings && i == 0 {
			cell = "th"
		}
		b.WriteString("<tr>")
		for _, v := range row {
			fmt.Fprintf(&b, "<%s>%s</%s>", cell, sanitizeInline(v), cell)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
	return b.String()
}

var allowedInline = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true, "s": true,
	"code": true, "mark": true, "sub": true, "sup": true, "br": true, "a": true,
}

var droppedInline = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true, "noscript": true,
}

// sanitizeInline keeps allow-listed inline tags and escapes all text
func sanitizeInline(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return html.EscapeString(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return html.EscapeString(s)
	}

	var b strings.Builder
	doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		writeInline(&b, sel)
	})
	return b.String()
}

func writeInline(b *strings.Builder, sel *goquery.Selection) {
	name := goquery.NodeName(sel)
	writeChildren := func() {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			writeInline(b, child)
		})
	}

	switch {
	case name == "#text":
		b.WriteString(html.EscapeString(sel.Text()))
	case strings.HasPrefix(name, "#"):
		// comments and other non-element nodes
	case droppedInline[name]:
	case !allowedInline[name]:
		writeChildren()
	case name == "br":
		b.WriteString("<br>")
	case name == "a":
		href, _ := sel.Attr("href")
		if !safeURL(href) {
			writeChildren()
			return
		}
		fmt.Fprintf(b, "<a href=\"%s\" rel=\"noopener noreferrer\">", html.EscapeString(href))
		writeChildren()
		b.WriteString("</a>")
	default:
		fmt.Fprintf(b, "<%s>", name)
		writeChildren()
		fmt.Fprintf(b, "</%s>", name)
	}
}

// safeURL accepts absolute http(s) and mailto URLs
func safeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "mailto":
		return u.Opaque != ""
	default:
		return false
	}
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
