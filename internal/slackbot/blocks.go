package slackbot

import (
	"github.com/slack-go/slack"

	"github.com/finwatch-dev/finwatch/internal/block"
)

// overflowActionID tags the per-transaction facet menu in interaction
// payloads. The menu is read-only; selections are ignored.
const overflowActionID = "txn_facets"

// ToSlackBlocks converts the transport-neutral block variants into Slack
// Block Kit objects.
func ToSlackBlocks(blocks []block.Block) []slack.Block {
	out := make([]slack.Block, 0, len(blocks))
	for _, b := range blocks {
		switch v := b.(type) {
		case block.Section:
			out = append(out, sectionBlock(v))
		case block.Header:
			out = append(out, slack.NewHeaderBlock(plainText(v.Text.Body)))
		case block.Context:
			elems := make([]slack.MixedElement, len(v.Elements))
			for i, e := range v.Elements {
				elems[i] = textObject(e)
			}
			out = append(out, slack.NewContextBlock("", elems...))
		}
	}
	return out
}

func sectionBlock(s block.Section) *slack.SectionBlock {
	var accessory *slack.Accessory
	if s.Accessory != nil {
		opts := make([]*slack.OptionBlockObject, len(s.Accessory.Options))
		for i, o := range s.Accessory.Options {
			opts[i] = slack.NewOptionBlockObject(o.Value, plainText(o.Label), nil)
		}
		accessory = slack.NewAccessory(slack.NewOverflowBlockElement(overflowActionID, opts...))
	}
	return slack.NewSectionBlock(textObject(s.Text), nil, accessory)
}

func textObject(t block.Text) *slack.TextBlockObject {
	if t.Markdown {
		return slack.NewTextBlockObject(slack.MarkdownType, t.Body, false, false)
	}
	return plainText(t.Body)
}

func plainText(body string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, body, false, false)
}
