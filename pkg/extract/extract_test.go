package extract

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func zipFixture(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Q3 Budget</w:t></w:r><w:r><w:t xml:space="preserve"> Review</w:t></w:r></w:p>
    <w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Revenue</w:t><w:tab/><w:t>1.2M</w:t></w:r></w:p>
  </w:body>
</w:document>`

const odtBody = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:body><office:text>
    <text:h>Meeting notes</text:h>
    <text:p>Agenda<text:s/>item<text:line-break/>second line</text:p>
  </office:text></office:body>
</office:document-content>`

const odsBody = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
  xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0">
  <office:body><office:spreadsheet>
    <table:table table:name="Sales">
      <table:table-row>
        <table:table-cell><text:p>Region</text:p></table:table-cell>
        <table:table-cell><text:p>Total</text:p></table:table-cell>
        <table:table-cell table:number-columns-repeated="1000"/>
      </table:table-row>
      <table:table-row>
        <table:table-cell><text:p>North</text:p></table:table-cell>
        <table:table-cell><text:p>42</text:p></table:table-cell>
      </table:table-row>
      <table:table-row table:number-rows-repeated="1000"><table:table-cell/></table:table-row>
    </table:table>
    <table:table table:name="Notes">
      <table:table-row><table:table-cell><text:p>Draft</text:p></table:table-cell></table:table-row>
    </table:table>
  </office:spreadsheet></office:body>
</office:document-content>`

func TestExtract_Text(t *testing.T) {
	e := New()

	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("季度预算报告"))
	require.NoError(t, err)
	latin, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("Café résumé"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		src      Source
		expected string
	}{
		{"utf8", Source{Name: "notes.md", Data: []byte("# Title\nbody")}, "# Title\nbody"},
		{"utf8 bom", Source{Name: "data.csv", Data: append([]byte{0xEF, 0xBB, 0xBF}, "a,b"...)}, "a,b"},
		{"gbk fallback", Source{Name: "report.txt", Data: gbk}, "季度预算报告"},
		{"latin-1 fallback", Source{Name: "cv.txt", Data: latin}, "Café résumé"},
		{"uppercase extension", Source{Name: "MAIN.GO", Data: []byte("package main")}, "package main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(context.Background(), tt.src))
		})
	}
}

func TestExtract_Documents(t *testing.T) {
	e := New()
	ctx := context.Background()

	docx := zipFixture(t, map[string]string{"word/document.xml": docxBody})
	got := e.Extract(ctx, Source{Name: "report.docx", Data: docx})
	assert.Equal(t, "Q3 Budget Review\nRevenue\t1.2M", got)

	odt := zipFixture(t, map[string]string{"content.xml": odtBody})
	got = e.Extract(ctx, Source{Name: "notes.odt", Data: odt})
	assert.Equal(t, "Meeting notes\nAgenda item\nsecond line", got)
}

func TestExtract_Spreadsheets(t *testing.T) {
	e := New()
	ctx := context.Background()

	ods := zipFixture(t, map[string]string{"content.xml": odsBody})
	got := e.Extract(ctx, Source{Name: "sales.ods", Data: ods})
	assert.Equal(t, "Region\tTotal\nNorth\t42\n\nDraft", got)

	wb := excelize.NewFile()
	require.NoError(t, wb.SetCellValue("Sheet1", "A1", "Item"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B1", "Qty"))
	require.NoError(t, wb.SetCellValue("Sheet1", "A2", "Bolts"))
	require.NoError(t, wb.SetCellValue("Sheet1", "B2", 12))
	_, err := wb.NewSheet("Summary")
	require.NoError(t, err)
	require.NoError(t, wb.SetCellValue("Summary", "A1", "Done"))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	got = e.Extract(ctx, Source{Name: "stock.xlsx", Data: buf.Bytes()})
	assert.Equal(t, "Item\tQty\nBolts\t12\n\nDone", got)
}

func TestExtract_LegacyDOC(t *testing.T) {
	var data []byte
	data = append(data, oleMagic...)
	data = append(data, make([]byte, 24)...)
	for _, u := range utf16.Encode([]rune("Annual maintenance contract")) {
		data = append(data, byte(u), byte(u>>8))
	}
	data = append(data, 0, 0, 0xFF, 0xFF)

	got := New().Extract(context.Background(), Source{Name: "contract.doc", Data: data})
	assert.Contains(t, got, "Annual maintenance contract")
}

func TestExtract_MetadataOnly(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	e := New(WithLocation(loc))
	mod := time.Date(2024, 3, 15, 11, 30, 22, 0, time.UTC)

	src := Source{
		Name:        "photo.png",
		ContentType: "image/png",
		ModTime:     mod,
		Data:        make([]byte, 3*1024*1024/2),
	}
	got := e.Extract(context.Background(), src)

	assert.True(t, strings.HasPrefix(got, "This is an image file."))
	assert.Contains(t, got, "- Original file name: photo.png")
	assert.Contains(t, got, "- File size: 1.50 MB")
	assert.Contains(t, got, "- Type: image/png")
	assert.Contains(t, got, "- Last modified: 2024-03-15 14:30:22 MSK")

	for _, name := range []string{"deck.pptx", "song.mp3", "clip.mkv", "backup.7z", "route.gpx", "book.epub"} {
		got := e.Extract(context.Background(), Source{Name: name, Data: []byte{1, 2, 3}})
		assert.Contains(t, got, "- Original file name: "+name, name)
		assert.Contains(t, got, "- Last modified: unknown", name)
	}
}

func TestExtract_ReadFailure(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"corrupt docx", Source{Name: "broken.docx", Data: []byte("not a zip")}, "open container"},
		{"docx without body", Source{Name: "empty.docx", Data: zipFixture(t, map[string]string{"x.xml": "<a/>"})}, "word/document.xml not found"},
		{"corrupt pdf", Source{Name: "scan.pdf", Data: []byte("%PDF-garbage")}, "Failed to read PDF document content of scan.pdf"},
		{"empty text", Source{Name: "blank.txt", Data: []byte("   \n")}, ErrNoText.Error()},
		{"doc without ole header", Source{Name: "fake.doc", Data: []byte("plain")}, "not an OLE2 compound document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(context.Background(), tt.src)
			assert.True(t, strings.HasPrefix(got, "Failed to read"), got)
			assert.Contains(t, got, tt.want)
			assert.Contains(t, got, "- Original file name: "+tt.src.Name)
		})
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := New().Extract(ctx, Source{Name: "a.txt", Data: []byte("hello")})
	assert.Contains(t, got, "context canceled")
}

func TestRegistry(t *testing.T) {
	assert.True(t, Supported("Report.DOCX"))
	assert.True(t, Supported("archive.tar"))
	assert.False(t, Supported("binary.exe"))
	assert.False(t, Supported("README"))

	f, ok := Lookup("budget.xlsx")
	require.True(t, ok)
	assert.Equal(t, CategorySpreadsheet, f.Category)
	assert.True(t, f.Extractable())

	f, ok = Lookup("slides.ppt")
	require.True(t, ok)
	assert.False(t, f.Extractable())

	exts := Extensions()
	assert.Contains(t, exts, "pdf")
	assert.IsIncreasing(t, exts)

	assert.Equal(t, "docx", Ext("a.b.DOCX"))
	assert.Equal(t, "", Ext("Makefile"))
}

func TestNameForBlob(t *testing.T) {
	assert.Equal(t, "report.docx", NameForBlob("report.docx", "application/pdf"))
	assert.Equal(t, "blob.pdf", NameForBlob("blob", "application/pdf"))
	assert.Equal(t, "blob.docx", NameForBlob("", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, "blob.txt", NameForBlob("", "application/x-unknown"))
}
