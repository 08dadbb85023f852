package extract

import (
	"path/filepath"
	"sort"
	"strings"
)

// Category — группа форматов с общим способом извлечения.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryText
	CategoryDocument
	CategorySpreadsheet
	CategoryPDF
	CategoryPresentation
	CategoryEbook
	CategoryImage
	CategoryAudio
	CategoryVideo
	CategoryArchive
	CategorySpecialized
)

// String возвращает человекочитаемое название категории для метаданных.
func (c Category) String() string {
	switch c {
	case CategoryText:
		return "text"
	case CategoryDocument:
		return "word-processor document"
	case CategorySpreadsheet:
		return "spreadsheet"
	case CategoryPDF:
		return "PDF document"
	case CategoryPresentation:
		return "presentation"
	case CategoryEbook:
		return "e-book"
	case CategoryImage:
		return "image"
	case CategoryAudio:
		return "audio"
	case CategoryVideo:
		return "video"
	case CategoryArchive:
		return "archive"
	case CategorySpecialized:
		return "specialized format"
	default:
		return "unknown"
	}
}

// Parser извлекает текст из байтов файла.
type Parser func(data []byte) (string, error)

// Format — запись реестра: категория и парсер.
// Parser == nil означает "только метаданные".
type Format struct {
	Category Category
	Parser   Parser
}

// Extractable сообщает, извлекается ли из формата текст.
func (f Format) Extractable() bool {
	return f.Parser != nil
}

var textExtensions = []string{
	"txt", "md", "rtf", "tex", "log", "csv", "tsv",
	"py", "js", "ts", "jsx", "tsx", "html", "htm", "css", "json", "xml", "yaml", "yml",
	"java", "cpp", "c", "h", "php", "rb", "go", "rs", "swift", "kt",
	"sql", "sh", "bat", "ps1", "r", "m", "scala", "pl", "lua",
}

var metadataOnly = map[Category][]string{
	CategoryPresentation: {"ppt", "pptx", "odp"},
	CategoryEbook:        {"epub", "mobi", "azw", "azw3"},
	CategoryImage: {
		"png", "jpg", "jpeg", "gif", "bmp", "tiff", "tif", "webp", "svg",
		"ico", "psd", "ai", "eps", "raw", "cr2", "nef", "arw",
	},
	CategoryAudio:       {"mp3", "wav", "flac", "aac", "ogg", "wma", "m4a"},
	CategoryVideo:       {"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v"},
	CategoryArchive:     {"zip", "rar", "7z", "tar", "gz", "bz2", "xz"},
	CategorySpecialized: {"ics", "vcf", "kml", "gpx", "dwg", "dxf", "step", "stl", "odg", "odf"},
}

// registry — единственный источник правды о поддерживаемых расширениях:
// им пользуются и приём файлов, и выбор парсера.
var registry = buildRegistry()

func buildRegistry() map[string]Format {
	r := make(map[string]Format)

	for _, ext := range textExtensions {
		r[ext] = Format{Category: CategoryText, Parser: decodeText}
	}

	r["docx"] = Format{Category: CategoryDocument, Parser: parseDOCX}
	r["doc"] = Format{Category: CategoryDocument, Parser: parseLegacyDOC}
	r["odt"] = Format{Category: CategoryDocument, Parser: parseODT}

	r["xlsx"] = Format{Category: CategorySpreadsheet, Parser: parseXLSX}
	r["xls"] = Format{Category: CategorySpreadsheet, Parser: parseXLS}
	r["ods"] = Format{Category: CategorySpreadsheet, Parser: parseODS}

	r["pdf"] = Format{Category: CategoryPDF, Parser: parsePDF}

	for cat, exts := range metadataOnly {
		for _, ext := range exts {
			r[ext] = Format{Category: cat}
		}
	}

	return r
}

// Ext возвращает расширение без точки в нижнем регистре.
// "Report.DOCX" → "docx", "README" → "".
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Lookup возвращает формат по имени файла.
func Lookup(name string) (Format, bool) {
	f, ok := registry[Ext(name)]
	return f, ok
}

// Supported сообщает, принимается ли файл на загрузку.
func Supported(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Extensions возвращает отсортированный список поддерживаемых расширений.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// contentTypeExtensions — расширения для безымянных загрузок ("blob").
var contentTypeExtensions = []struct {
	prefix string
	ext    string
}{
	{"text/plain", "txt"},
	{"text/markdown", "md"},
	{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
	{"application/msword", "doc"},
	{"application/pdf", "pdf"},
	{"image/png", "png"},
	{"image/jpeg", "jpg"},
	{"image/gif", "gif"},
}

// NameForBlob подбирает имя файла для загрузки без имени по Content-Type.
// Неизвестный тип считается текстом.
func NameForBlob(name, contentType string) string {
	if name != "" && name != "blob" {
		return name
	}
	for _, ct := range contentTypeExtensions {
		if strings.Contains(contentType, ct.prefix) {
			return "blob." + ct.ext
		}
	}
	return "blob.txt"
}
