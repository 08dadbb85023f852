package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
)

const (
	wordNS  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	odfText = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	odfTbl  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"

	// maxXMLPart ограничивает распакованный XML, защита от zip-бомб.
	maxXMLPart = 64 << 20

	// minRunLength — минимальная длина фрагмента текста в бинарном .doc.
	minRunLength = 6
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// zipMember читает один файл из ZIP-контейнера (OOXML, ODF).
func zipMember(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		return io.ReadAll(io.LimitReader(rc, maxXMLPart))
	}

	return nil, fmt.Errorf("%s not found in container", name)
}

// parseDOCX собирает текст из элементов w:t в word/document.xml.
// Абзацы разделяются переводом строки.
func parseDOCX(data []byte) (string, error) {
	raw, err := zipMember(data, "word/document.xml")
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var b strings.Builder
	inText := false
	runDepth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if runDepth > 0 {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return tidyLines(b.String()), nil
}

// parseODT собирает текст абзацев и заголовков из content.xml.
func parseODT(data []byte) (string, error) {
	raw, err := zipMember(data, "content.xml")
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var b strings.Builder
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != odfText {
				continue
			}
			switch t.Name.Local {
			case "p", "h":
				depth++
			case "s":
				b.WriteByte(' ')
			case "tab":
				b.WriteByte('\t')
			case "line-break":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space == odfText && (t.Name.Local == "p" || t.Name.Local == "h") {
				depth--
				if depth == 0 {
					b.WriteByte('\n')
				}
			}
		case xml.CharData:
			if depth > 0 {
				b.Write(t)
			}
		}
	}

	return tidyLines(b.String()), nil
}

// parseODS обходит таблицы content.xml: ячейки через TAB, строки через LF.
func parseODS(data []byte) (string, error) {
	raw, err := zipMember(data, "content.xml")
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var sheets [][][]string
	var row []string
	var cell strings.Builder
	inCell := false
	paragraphs := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == odfTbl && t.Name.Local == "table":
				sheets = append(sheets, nil)
			case t.Name.Space == odfTbl && (t.Name.Local == "table-cell" || t.Name.Local == "covered-table-cell"):
				inCell = true
				paragraphs = 0
				cell.Reset()
			case inCell && t.Name.Space == odfText && t.Name.Local == "p":
				if paragraphs > 0 {
					cell.WriteByte(' ')
				}
				paragraphs++
			case inCell && t.Name.Space == odfText && (t.Name.Local == "s" || t.Name.Local == "tab"):
				cell.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != odfTbl {
				continue
			}
			switch t.Name.Local {
			case "table-cell", "covered-table-cell":
				row = append(row, strings.TrimSpace(cell.String()))
				inCell = false
			case "table-row":
				if len(sheets) > 0 {
					sheets[len(sheets)-1] = append(sheets[len(sheets)-1], row)
				}
				row = nil
			}
		case xml.CharData:
			if inCell {
				cell.Write(t)
			}
		}
	}

	return renderSheets(sheets), nil
}

// parseLegacyDOC вытаскивает печатные фрагменты из бинарного Word 97-2003.
//
// Полноценный разбор FIB/piece table не делается: берутся цепочки
// UTF-16LE и 8-битного текста, выбирается более длинный результат.
func parseLegacyDOC(data []byte) (string, error) {
	if !bytes.HasPrefix(data, oleMagic) {
		return "", errors.New("not an OLE2 compound document")
	}

	wide := utf16Runs(data)
	narrow := asciiRuns(data)

	text := wide
	if utf8.RuneCountInString(narrow) > utf8.RuneCountInString(wide) {
		text = narrow
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return tidyLines(text), nil
}

func utf16Runs(data []byte) string {
	var out, run strings.Builder
	runLen := 0
	flush := func() {
		if runLen >= minRunLength {
			out.WriteString(strings.TrimSpace(run.String()))
			out.WriteByte('\n')
		}
		run.Reset()
		runLen = 0
	}

	for i := 0; i+1 < len(data); i += 2 {
		lo, hi := data[i], data[i+1]
		r := rune(uint16(lo) | uint16(hi)<<8)
		// Пара печатных ASCII байтов — это 8-битный текст, а не UTF-16.
		if isASCIIPrint(lo) && isASCIIPrint(hi) {
			flush()
			continue
		}
		if r == '\r' || r == '\n' {
			run.WriteByte('\n')
			continue
		}
		if r == '\t' || (unicode.IsPrint(r) && !unicode.Is(unicode.Co, r)) {
			run.WriteRune(r)
			runLen++
			continue
		}
		flush()
	}
	flush()

	return out.String()
}

func asciiRuns(data []byte) string {
	var out, run strings.Builder
	flush := func() {
		if run.Len() >= minRunLength {
			out.WriteString(strings.TrimSpace(run.String()))
			out.WriteByte('\n')
		}
		run.Reset()
	}

	for _, c := range data {
		switch {
		case isASCIIPrint(c) || c == '\t':
			run.WriteByte(c)
		case c == '\r' || c == '\n':
			run.WriteByte('\n')
		default:
			flush()
		}
	}
	flush()

	return out.String()
}

func isASCIIPrint(c byte) bool {
	return c >= 0x20 && c <= 0x7E
}

// tidyLines убирает пробелы по краям строк и схлопывает пустые строки.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
