// Package pdftext pulls plain text out of an uploaded PDF so it can be fed
// to the MCQ generation service.
package pdftext

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return "", err
	}
	return buf.String(), nil
}
