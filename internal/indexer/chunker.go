package indexer

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	minChunkRunes = 50
	maxChunkRunes = 700 // ~450 tokens, inside the 512-token window of small embedding models
)

// Chunk is a piece of text scoped to the headings above it.
type Chunk struct {
	Index       int
	HeadingPath string // "# Title > ## Section"
	Text        string
}

// embedText is what gets embedded: the heading path gives the chunk its context.
func (c Chunk) embedText() string {
	if c.HeadingPath == "" {
		return c.Text
	}
	return c.HeadingPath + "\n\n" + c.Text
}

// Chunker splits markdown (or plain) text into heading-aware, size-bounded chunks.
type Chunker struct {
	md goldmark.Markdown
}

// NewChunker creates a Chunker.
func NewChunker() *Chunker {
	return &Chunker{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

type section struct {
	path string
	body strings.Builder
}

// Split returns the chunks of content. Plain text without headings becomes
// chunks with an empty heading path.
func (c *Chunker) Split(content string) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	src := []byte(content)
	doc := c.md.Parser().Parse(text.NewReader(src))

	var sections []*section
	var stack []heading
	cur := &section{}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			sections = append(sections, cur)
			for len(stack) > 0 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, heading{level: h.Level, text: inlineText(h, src)})
			cur = &section{path: headingPath(stack)}
			continue
		}
		block := strings.TrimSpace(blockText(n, src))
		if block == "" {
			continue
		}
		if cur.body.Len() > 0 {
			cur.body.WriteString("\n\n")
		}
		cur.body.WriteString(block)
	}
	sections = append(sections, cur)

	var chunks []Chunk
	for _, s := range sections {
		if s.body.Len() == 0 {
			continue
		}
		chunks = append(chunks, Chunk{HeadingPath: s.path, Text: s.body.String()})
	}
	return bound(chunks)
}

type heading struct {
	level int
	text  string
}

func headingPath(stack []heading) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// inlineText collects the literal text under n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockText renders a top-level block as plain text. List items and table
// rows go on their own lines; table cells are joined with " | ".
func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			newline()
			lines := v.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.ListItem, *ast.TextBlock, *extast.TableRow, *extast.TableHeader:
			newline()
		case *extast.TableCell:
			if v.PreviousSibling() != nil {
				b.WriteString(" | ")
			}
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// bound merges chunks shorter than minChunkRunes into their successor and
// splits chunks longer than maxChunkRunes, then renumbers them.
func bound(chunks []Chunk) []Chunk {
	var out []Chunk
	for i := 0; i < len(chunks); i++ {
		cur := chunks[i]
		for utf8.RuneCountInString(cur.Text) < minChunkRunes && i+1 < len(chunks) {
			merged := cur.Text + "\n\n" + chunks[i+1].Text
			if utf8.RuneCountInString(merged) > maxChunkRunes {
				break
			}
			cur.Text = merged
			i++
		}
		out = append(out, split(cur)...)
	}
	for i := range out {
		out[i].Index = i
	}
	return out
}

// split cuts an oversized chunk at the last paragraph, line or sentence
// boundary that fits, falling back to a hard cut.
func split(c Chunk) []Chunk {
	runes := []rune(c.Text)
	if len(runes) <= maxChunkRunes {
		return []Chunk{c}
	}
	var out []Chunk
	for start := 0; start < len(runes); {
		end := start + maxChunkRunes
		if end >= len(runes) {
			end = len(runes)
		} else {
			window := string(runes[start:end])
			for _, sep := range []string{"\n\n", "\n", ". "} {
				if i := strings.LastIndex(window, sep); i > 0 {
					end = start + utf8.RuneCountInString(window[:i+len(sep)])
					break
				}
			}
		}
		if part := strings.TrimSpace(string(runes[start:end])); part != "" {
			out = append(out, Chunk{HeadingPath: c.HeadingPath, Text: part})
		}
		start = end
	}
	return out
}

// Title returns the first level-1 heading of content, else the first
// level-2 heading, else the empty string.
func (c *Chunker) Title(content string) string {
	src := []byte(content)
	doc := c.md.Parser().Parse(text.NewReader(src))
	var h2 string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		if h.Level == 1 {
			return inlineText(h, src)
		}
		if h.Level == 2 && h2 == "" {
			h2 = inlineText(h, src)
		}
	}
	return h2
}

// TitleFromFilename turns "meeting notes.md" into "Meeting Notes".
func TitleFromFilename(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
