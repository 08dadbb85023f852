// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки ответов LLM от markdown-обёртки
// и извлечения JSON из свободного текста.
package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// LLM часто возвращает JSON обёрнутым в markdown кодовые блоки:
//
//	```json
//	{"key": "value"}
//	```
//
// Примеры:
//
//	```json {"a": 1} ``` → {"a": 1}
//	``` {"a": 1} ``` → {"a": 1}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```Json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// FencedBlock возвращает содержимое первого markdown блока ```json ... ```
// в любом месте текста. Пустая строка если блока нет.
func FencedBlock(s string) string {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```json")
	if start == -1 {
		return ""
	}

	body := s[start+len("```json"):]
	end := strings.Index(body, "```")
	if end == -1 {
		return strings.TrimSpace(body)
	}

	return strings.TrimSpace(body[:end])
}

// ExtractJSON пытается извлечь JSON объект из строки.
//
// Находит первую '{' и соответствующую ей '}' по глубине вложенности.
// Возвращает пустую строку если JSON-объект не найден.
//
// ВНИМАНИЕ: Не валидирует JSON, только извлекает его по эвристикам.
// Для валидации используйте json.Unmarshal().
func ExtractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	// Элемент массива не извлекаем
	if start > 0 && s[start-1] == '[' {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return s[start:]
}

// LastNonEmptyLine возвращает последнюю непустую строку текста,
// пропуская строки-ограничители markdown блоков.
func LastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		return line
	}
	return ""
}

// TruncateRunes обрезает строку до n символов (рун).
// При n <= 0 строка возвращается без изменений.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
