package naming

import (
	"path/filepath"

	"github.com/ilkoid/airename/pkg/prompt"
	"github.com/ilkoid/airename/pkg/utils"
)

const defaultSystemPrompt = `You are a document understanding and file naming expert.
Analyse all the information you are given about a document (its content, original file name, size, type and dates) and produce a new file name that describes the document better than the original one.

Rules:
- Do not copy sentences from the document verbatim; use your own words.
- Keep a formal, professional tone.
- Produce both a short summary of the document and a short title.
- The title is a file name without extension, at most 60 characters, without the characters <>:"/\|?*.
- Include dates, project names or document kind (report, plan, minutes, invoice) when they are present.
- Write the title in the language of the document.

Reply with a single JSON object and nothing else:
{"summary": "what the document is about and what it is for", "title": "new file name without extension"}`

const defaultUserPrompt = `Original file name: {{.OriginalName}}
{{- if .Category}}
Document category: {{.Category}}
{{- end}}

Document information:
{{.Content}}`

// promptData — переменные шаблона промпта.
type promptData struct {
	OriginalName string
	Content      string
	Category     string
}

// DefaultPrompt возвращает встроенную пару system/user промптов.
func DefaultPrompt() *prompt.PromptFile {
	return &prompt.PromptFile{
		Messages: []prompt.Message{
			{Role: "system", Content: defaultSystemPrompt},
			{Role: "user", Content: defaultUserPrompt},
		},
	}
}

// LoadPrompt загружает YAML промпт из dir/file.
// Пустое имя, отсутствующий или битый файл дают встроенный промпт.
func LoadPrompt(dir, file string) *prompt.PromptFile {
	if file == "" {
		return DefaultPrompt()
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, file)
	}

	pf, err := prompt.Load(path)
	if err != nil {
		utils.Warn("Naming prompt not loaded, using built-in prompt", "path", path, "error", err)
		return DefaultPrompt()
	}

	utils.Info("Naming prompt loaded", "path", path, "messages", len(pf.Messages))
	return pf
}
