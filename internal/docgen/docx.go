package docgen

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"
)

// renderDOCX produces a word document: a title page block followed by
// the parsed content with headings, bullets and body text.
func (r *OfficeRenderer) renderDOCX(doc Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	title := w.AddParagraph()
	title.AddText(doc.Name).Size("44").Bold().Color("0066CC")
	title.Justification("center")

	subtitle := w.AddParagraph()
	subtitle.AddText(fmt.Sprintf("Methodology: %s", orNA(doc.Methodology))).Size("22").Italic()
	subtitle.Justification("center")

	stamp := w.AddParagraph()
	stamp.AddText(fmt.Sprintf("Generated %s", r.now().Format("January 2, 2006"))).Size("20").Italic()
	stamp.Justification("center")

	w.AddParagraph() // spacer before the body

	for _, line := range parseContent(doc.Content) {
		p := w.AddParagraph()
		switch line.kind {
		case "heading":
			size := "32"
			if line.level >= 2 {
				size = "28"
			}
			p.AddText(line.text).Size(size).Bold().Color("0066CC")
		case "bullet":
			p.AddText("• " + line.text).Size("22")
		case "numbered":
			p.AddText(line.text).Size("22")
		default:
			p.AddText(line.text).Size("22")
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}
