// Package portabletext renders CMS rich-text blocks to HTML.
package portabletext

import (
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
)

// Block is one Portable Text node; unknown types are skipped
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key"`
	Style    string    `json:"style"`
	ListItem string    `json:"listItem"`
	Level    int       `json:"level"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs"`

	// image blocks
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// Span is a run of text with marks
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef is an annotation referenced by key from span marks
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"underline":      "u",
	"code":           "code",
	"strike-through": "s",
}

var styleTags = map[string]string{
	"normal":     "p",
	"h1":         "h2",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

// Render decodes raw blocks and renders them; empty or null input yields empty HTML
func Render(raw json.RawMessage) (template.HTML, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", fmt.Errorf("decoding portable text: %w", err)
	}
	return RenderBlocks(blocks), nil
}

// RenderBlocks renders already decoded blocks
func RenderBlocks(blocks []Block) template.HTML {
	var b strings.Builder
	var openList string

	closeList := func() {
		if openList != "" {
			b.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, blk := range blocks {
		switch blk.Type {
		case "block":
			if blk.ListItem != "" {
				tag := "ul"
				if blk.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					closeList()
					b.WriteString("<" + tag + ">")
					openList = tag
				}
				b.WriteString("<li>")
				writeSpans(&b, blk)
				b.WriteString("</li>")
				continue
			}
			closeList()
			tag, ok := styleTags[blk.Style]
			if !ok {
				tag = "p"
			}
			b.WriteString("<" + tag + ">")
			writeSpans(&b, blk)
			b.WriteString("</" + tag + ">")
		case "image":
			closeList()
			if !safeURL(blk.URL) {
				continue
			}
			b.WriteString(`<figure><img src="` + html.EscapeString(blk.URL) + `" alt="` + html.EscapeString(blk.Alt) + `" loading="lazy">`)
			if blk.Caption != "" {
				b.WriteString("<figcaption>" + html.EscapeString(blk.Caption) + "</figcaption>")
			}
			b.WriteString("</figure>")
		default:
			closeList()
		}
	}
	closeList()

	return template.HTML(b.String())
}

// PlainText joins the text of all spans, one block per line
func PlainText(blocks []Block) string {
	var lines []string
	for _, blk := range blocks {
		if blk.Type != "block" {
			continue
		}
		var sb strings.Builder
		for _, s := range blk.Children {
			sb.WriteString(s.Text)
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func writeSpans(b *strings.Builder, blk Block) {
	defs := make(map[string]MarkDef, len(blk.MarkDefs))
	for _, d := range blk.MarkDefs {
		defs[d.Key] = d
	}

	for _, span := range blk.Children {
		text := strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br>")
		var openTags, closeTags []string
		for _, mark := range span.Marks {
			if tag, ok := decoratorTags[mark]; ok {
				openTags = append(openTags, "<"+tag+">")
				closeTags = append([]string{"</" + tag + ">"}, closeTags...)
				continue
			}
			def, ok := defs[mark]
			if ok && def.Type == "link" && safeURL(def.Href) {
				attrs := ""
				if strings.HasPrefix(def.Href, "http") {
					attrs = ` target="_blank" rel="noopener noreferrer"`
				}
				openTags = append(openTags, `<a href="`+html.EscapeString(def.Href)+`"`+attrs+`>`)
				closeTags = append([]string{"</a>"}, closeTags...)
			}
		}
		b.WriteString(strings.Join(openTags, ""))
		b.WriteString(text)
		b.WriteString(strings.Join(closeTags, ""))
	}
}

// safeURL allows http(s), mailto and site-relative links only
func safeURL(raw string) bool {
	if raw == "" {
		return false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "mailto":
		return true
	}
	return false
}
