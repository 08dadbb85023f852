package history

import (
	"fmt"
	"strings"
	"time"
)

// processedAtLayout — формат времени в выгрузке.
const processedAtLayout = "2006/01/02 15:04"

// ExportFile — выгрузка выбранных записей.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export формирует файл из выбранных записей: одна запись — текстовый
// key/value, несколько — CSV с заголовком originalName,newName,processedAt.
func Export(records []Record, prefix string, now time.Time, loc *time.Location) (*ExportFile, error) {
	if len(records) == 0 {
		return nil, ErrEmptySelection
	}
	if loc == nil {
		loc = time.Local
	}

	stamp := now.In(loc).Format("20060102_150405")

	if len(records) == 1 {
		r := records[0]
		body := fmt.Sprintf("Original name: %s\nNew name: %s\nProcessed at: %s\n",
			r.OriginalName, r.NewName, r.Time().In(loc).Format(processedAtLayout))
		return &ExportFile{
			Name:        prefix + stamp + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(body),
		}, nil
	}

	var b strings.Builder
	b.WriteString("originalName,newName,processedAt\n")
	for i, r := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s,%s,%s",
			quoteCSV(r.OriginalName), quoteCSV(r.NewName),
			quoteCSV(r.Time().In(loc).Format(processedAtLayout)))
	}

	return &ExportFile{
		Name:        prefix + stamp + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte(b.String()),
	}, nil
}

// quoteCSV всегда берёт значение в кавычки, удваивая внутренние.
func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
