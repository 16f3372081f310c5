package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// SupportedExtensions lists the file types the indexer can ingest.
var SupportedExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".md":   true,
	".docx": true,
}

// extractTexts pulls indexable text fragments out of one file. CSV files
// yield one fragment per row, other formats yield the whole document.
func extractTexts(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return extractCSV(path)
	case ".txt", ".md":
		return extractPlain(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

// extractCSV joins the question and answer columns of each row into one
// fragment so a search for either side lands on the pair. Files without
// recognizable headers fall back to joining all columns.
func extractCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	qCol, aCol := findQAColumns(records[0])
	rows := records
	if qCol >= 0 {
		rows = records[1:]
	}

	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		var text string
		if qCol >= 0 && qCol < len(row) && aCol < len(row) {
			text = strings.TrimSpace(row[qCol] + " " + row[aCol])
		} else {
			text = strings.TrimSpace(strings.Join(row, " "))
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func findQAColumns(header []string) (qCol, aCol int) {
	qCol, aCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question", "questions", "q":
			qCol = i
		case "answer", "answers", "a":
			aCol = i
		}
	}
	if qCol < 0 || aCol < 0 {
		return -1, -1
	}
	return qCol, aCol
}

func extractPlain(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

func extractDOCX(path string) ([]string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	text := strings.TrimSpace(doc.ExtractText().Text())
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
