// Package block models the display units that make up an outbound
// notification: sections, headers and context rows, composed into
// fixed-size message chunks. The variants here are transport-neutral; the
// Slack sink converts them to Block Kit objects at the boundary.
package block

import "strings"

// Block is one structured display unit in an outbound message. Each
// variant knows how to contribute to the flattened plain-text summary.
type Block interface {
	flattenText() string
}

// Text is a leaf text element. Markdown selects rich rendering at the
// sink; plain text is used for headers and menu labels.
type Text struct {
	Markdown bool
	Body     string
}

// Plain returns a plain-text element.
func Plain(body string) Text { return Text{Body: body} }

// Markdown returns a markdown-rendered element.
func Markdown(body string) Text { return Text{Markdown: true, Body: body} }

// Option is one read-only entry in an overflow menu.
type Option struct {
	Value string // stable facet key, e.g. "fi", "account", "date", "id"
	Label string
}

// Overflow is a compact menu attached to a section, exposing secondary
// facets of the record without widening the primary line.
type Overflow struct {
	Options []Option
}

// Section is the workhorse block: one text body plus an optional overflow
// accessory.
type Section struct {
	Text      Text
	Accessory *Overflow
}

func (s Section) flattenText() string { return s.Text.Body }

// Header is a prominent title block.
type Header struct {
	Text Text
}

func (h Header) flattenText() string { return h.Text.Body }

// Context is a row of small supporting elements.
type Context struct {
	Elements []Text
}

func (c Context) flattenText() string {
	parts := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		parts[i] = e.Body
	}
	return strings.Join(parts, "; ")
}

// Flatten recursively extracts all textual content from blocks and joins
// it with "; ". Nil blocks contribute nothing. The result serves as the
// plain-text fallback for transports that require one.
func Flatten(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if b == nil {
			continue
		}
		parts = append(parts, b.flattenText())
	}
	return strings.Join(parts, "; ")
}

// Chunk partitions blocks into slices of at most size, preserving order.
// A non-positive size yields a single chunk.
func Chunk(blocks []Block, size int) [][]Block {
	if len(blocks) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]Block{blocks}
	}
	var chunks [][]Block
	for start := 0; start < len(blocks); start += size {
		end := start + size
		if end > len(blocks) {
			end = len(blocks)
		}
		chunks = append(chunks, blocks[start:end])
	}
	return chunks
}

// Truncate caps s at limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
