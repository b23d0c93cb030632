package files

import (
	"bytes"

	pdf "rsc.io/pdf"
)

// ExtractPDFText opens a PDF at filePath and returns its text layer up to
// maxChars, for the admin receipt preview. PDFs without a text layer
// (scans, photos exported as PDF) yield an empty string, not an error.
func ExtractPDFText(filePath string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = 2000
	}

	r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	total := r.NumPage()
	for pageIndex := 1; pageIndex <= total; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		for _, t := range content.Text {
			buf.WriteString(t.S)
		}
		buf.WriteString("\n\n")
		if buf.Len() >= maxChars {
			break
		}
	}

	out := buf.String()
	if len(out) > maxChars {
		out = out[:maxChars]
	}
	return out, nil
}
