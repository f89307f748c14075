package notion

import (
	"strings"

	"studycapture/application/ports"
	"studycapture/pkg/utils"
)

// MaxTextLength is the largest content Notion accepts in one text segment.
const MaxTextLength = 2000

const (
	sourceLabel   = "🔗 Source: "
	keywordsLabel = "🏷️ Keywords: "
)

// Block is a child block of a page.
type Block struct {
	Object           string     `json:"object"`
	Type             string     `json:"type"`
	BulletedListItem *BlockText `json:"bulleted_list_item,omitempty"`
	Paragraph        *BlockText `json:"paragraph,omitempty"`
}

// BlockText is the rich text payload shared by text blocks.
type BlockText struct {
	RichText []RichText `json:"rich_text"`
}

// Plain returns the visible text of the block.
func (b Block) Plain() string {
	var bt *BlockText
	switch b.Type {
	case "bulleted_list_item":
		bt = b.BulletedListItem
	case "paragraph":
		bt = b.Paragraph
	}
	if bt == nil {
		return ""
	}
	return joinPlain(bt.RichText)
}

// text splits content into segments no longer than MaxTextLength.
func text(content string, link *Link) []RichText {
	var out []RichText
	for {
		chunk := utils.TruncateRunes(content, MaxTextLength)
		out = append(out, RichText{Type: "text", Text: &TextSpan{Content: chunk, Link: link}})
		content = content[len(chunk):]
		if content == "" {
			return out
		}
	}
}

// Bullet builds a bulleted list item.
func Bullet(content string) Block {
	return Block{
		Object:           "block",
		Type:             "bulleted_list_item",
		BulletedListItem: &BlockText{RichText: text(content, nil)},
	}
}

// Paragraph builds a paragraph from segments.
func Paragraph(segments ...RichText) Block {
	return Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &BlockText{RichText: segments},
	}
}

// LeafBlocks renders a note body: one bullet per non-blank line, then an
// optional source paragraph and an optional keywords paragraph.
func LeafBlocks(leaf ports.LeafPage) []Block {
	blocks := make([]Block, 0, len(leaf.Lines)+2)
	for _, line := range leaf.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, Bullet(line))
	}

	if src := strings.TrimSpace(leaf.SourceURL); src != "" {
		segs := append(text(sourceLabel, nil), text(leaf.SourceURL, &Link{URL: leaf.SourceURL})...)
		blocks = append(blocks, Paragraph(segs...))
	}

	var kws []string
	for _, kw := range leaf.Keywords {
		if strings.TrimSpace(kw) != "" {
			kws = append(kws, kw)
		}
	}
	if len(kws) > 0 {
		segs := append(text(keywordsLabel, nil), text(strings.Join(kws, ", "), nil)...)
		blocks = append(blocks, Paragraph(segs...))
	}
	return blocks
}

// TitleProperties builds the properties map for a page titled title.
func TitleProperties(title string) map[string]Property {
	return map[string]Property{
		"title": {Title: text(title, nil)},
	}
}
