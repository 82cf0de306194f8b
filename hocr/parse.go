// Package hocr reads positioned words from hOCR files, the HTML output
// format of Tesseract and other OCR engines, and serves them to the stream
// parsing engine.
package hocr

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/tabscan/model"
)

// Document is a parsed hOCR file.
type Document struct {
	Pages []Page
}

// Page is one ocr_page element.
type Page struct {
	Number int        // ppageno + 1 when present, else position in the file
	BBox   model.Rect // Page box in pixels
	Words  []Word
}

// Word is one ocrx_word element.
type Word struct {
	Text       string
	BBox       model.Rect // Pixels, top-left origin
	Confidence float64    // x_wconf, 0-100
	Line       int        // 1-indexed text line within the page, 0 if none
}

// lineClasses are the hOCR elements Tesseract emits for a line of text.
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// Text returns the words of the page joined by spaces, one line of text
// per hOCR line.
func (p Page) Text() string {
	var sb strings.Builder
	for i, w := range p.Words {
		if i > 0 {
			if w.Line != p.Words[i-1].Line {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.Text)
	}
	return sb.String()
}

// Parse converts raw hOCR data into a Document.
func Parse(data []byte) (*Document, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	doc := &Document{}
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			doc.Pages = append(doc.Pages, parsePage(n, len(doc.Pages)+1))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(root)

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return doc, nil
}

// decode converts Latin-1 declared content to UTF-8.
func decode(data []byte) ([]byte, error) {
	head := strings.ToLower(string(data[:min(len(data), 1024)]))
	idx := strings.Index(head, "charset=")
	if idx < 0 {
		return data, nil
	}
	fields := strings.FieldsFunc(head[idx+len("charset="):], func(r rune) bool {
		return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '/'
	})
	if len(fields) == 0 {
		return data, nil
	}
	switch fields[0] {
	case "iso-8859-1", "latin1", "latin-1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", fields[0], err)
		}
		return out, nil
	case "windows-1252", "cp1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", fields[0], err)
		}
		return out, nil
	}
	return data, nil
}

func parsePage(n *html.Node, position int) Page {
	props := ParseTitle(attr(n, "title"))
	page := Page{Number: position}
	if v, ok := props["ppageno"]; ok && len(v) > 0 {
		if no, err := strconv.Atoi(v[0]); err == nil {
			page.Number = no + 1
		}
	}
	if box, ok := parseBBox(props); ok {
		page.BBox = box
	}

	lines := 0
	var findWords func(*html.Node, int)
	findWords = func(c *html.Node, line int) {
		if c.Type == html.ElementNode {
			if hasClass(c, "ocrx_word") {
				if w, ok := parseWord(c); ok {
					w.Line = line
					page.Words = append(page.Words, w)
				}
				return
			}
			if isLine(c) {
				lines++
				line = lines
			}
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			findWords(child, line)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		findWords(c, 0)
	}
	return page
}

func parseWord(n *html.Node) (Word, bool) {
	props := ParseTitle(attr(n, "title"))
	box, ok := parseBBox(props)
	if !ok {
		return Word{}, false
	}
	text := strings.TrimSpace(textContent(n))
	if text == "" {
		return Word{}, false
	}
	w := Word{Text: text, BBox: box, Confidence: 100}
	if v, ok := props["x_wconf"]; ok && len(v) > 0 {
		if conf, err := strconv.ParseFloat(v[0], 64); err == nil {
			w.Confidence = conf
		}
	}
	return w, true
}

// ParseTitle breaks down an hOCR title attribute into its properties.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

func parseBBox(props map[string][]string) (model.Rect, bool) {
	v, ok := props["bbox"]
	if !ok || len(v) < 4 {
		return model.Rect{}, false
	}
	var n [4]int
	for i := range n {
		x, err := strconv.Atoi(v[i])
		if err != nil {
			return model.Rect{}, false
		}
		n[i] = x
	}
	r := model.Rect{X: n[0], Y: n[1], W: n[2] - n[0], H: n[3] - n[1]}
	return r, !r.Empty()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isLine(n *html.Node) bool {
	for _, class := range lineClasses {
		if hasClass(n, class) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
