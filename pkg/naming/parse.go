package naming

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/ilkoid/airename/pkg/utils"
)

// Tier — какой способ разбора ответа сработал.
type Tier string

const (
	TierJSON      Tier = "json"
	TierTitleLine Tier = "title_line"
	TierLastLine  Tier = "last_line"
	TierFallback  Tier = "fallback"
)

// illegalChars — символы, запрещённые в именах файлов.
const illegalChars = `<>:"/\|?*`

// titleLine ловит строку заголовка в свободном ответе:
// "Title: ...", "**Title**: ...", "文档标题：...", "Suggested title - ...".
var titleLine = regexp.MustCompile(`(?im)^[\s#>*\-]*(?:suggested\s+|new\s+|document\s+|file\s+)?(?:title|file\s*name|文档标题|标题)\s*\**\s*[:：]\s*(.+)$`)

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// reply — ожидаемая JSON-структура ответа модели.
type reply struct {
	Summary string `json:"summary"`
	Title   string `json:"title"`
}

// ParseReply вытаскивает кандидата в имя из ответа модели.
//
// Порядок разбора фиксирован:
//  1. JSON объект (в том числе в ```json блоке) с непустым title;
//  2. строка "title: ..." из свободного текста;
//  3. последняя непустая строка ответа.
//
// Если ответ разобрался как JSON, но title пуст, последняя строка не
// используется: возвращается пустой кандидат с summary из JSON.
func ParseReply(text string) (title, summary string, tier Tier) {
	parsedJSON := false
	for _, candidate := range []string{
		utils.FencedBlock(text),
		utils.CleanJsonBlock(text),
		utils.ExtractJSON(text),
	} {
		if candidate == "" {
			continue
		}
		var r reply
		if err := json.Unmarshal([]byte(candidate), &r); err != nil {
			continue
		}
		if strings.TrimSpace(r.Title) != "" {
			return r.Title, r.Summary, TierJSON
		}
		if !parsedJSON {
			parsedJSON = true
			summary = r.Summary
		}
	}

	if m := titleLine.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t, "", TierTitleLine
		}
	}

	if parsedJSON {
		return "", summary, TierJSON
	}

	return utils.LastNonEmptyLine(text), "", TierLastLine
}

// Sanitize приводит кандидата к допустимому имени файла:
// убирает запрещённые и управляющие символы, кавычки и markdown,
// схлопывает пробелы, обрезает до maxRunes символов.
func Sanitize(candidate string, maxRunes int) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(illegalChars, r):
			return -1
		case r == '`':
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, candidate)

	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, ` '“”‘’«»「」『』_.`)
	s = utils.TruncateRunes(s, maxRunes)

	return strings.TrimRight(s, " .")
}

// StripExtension возвращает имя без последнего расширения.
// Для имён вида ".env" возвращает имя целиком.
func StripExtension(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		return name
	}
	return stem
}

// ValidateName проверяет имя, введённое пользователем вручную.
func ValidateName(name string) error {
	trim := strings.TrimSpace(name)
	if trim == "" {
		return errors.New("empty name")
	}
	if strings.ContainsAny(trim, illegalChars) {
		return errors.New("invalid characters")
	}
	if reservedNames[strings.ToUpper(StripExtension(trim))] {
		return errors.New("reserved filename")
	}
	return nil
}
