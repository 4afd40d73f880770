package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

const systemInstruction = "You are an expert teacher who writes accurate, well-structured study material. " +
	"Always answer with a single JSON document and nothing else."

type promptData struct {
	Topic string
	Count int
}

// Templates holds the parsed prompt templates.
type Templates struct {
	flashcards *template.Template
	path       *template.Template
}

// LoadTemplates parses the prompt templates. Empty paths select the
// built-in templates.
func LoadTemplates(flashcardPath, pathPath string) (*Templates, error) {
	fc, err := loadTemplate("flashcards", flashcardPath, "prompts/flashcards.tmpl")
	if err != nil {
		return nil, err
	}
	lp, err := loadTemplate("learning_path", pathPath, "prompts/learning_path.tmpl")
	if err != nil {
		return nil, err
	}
	return &Templates{flashcards: fc, path: lp}, nil
}

func loadTemplate(name, path, builtin string) (*template.Template, error) {
	var (
		content []byte
		err     error
	)
	if path != "" {
		content, err = os.ReadFile(path)
	} else {
		content, err = promptFS.ReadFile(builtin)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s prompt template: %v", ErrInvalidConfig, name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s prompt template: %v", ErrInvalidConfig, name, err)
	}
	return tmpl, nil
}

func (t *Templates) flashcardPrompt(topic string, count int) (Prompt, error) {
	user, err := execute(t.flashcards, promptData{Topic: topic, Count: count})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: systemInstruction, User: user, Schema: FlashcardSchema}, nil
}

func (t *Templates) pathPrompt(topic string) (Prompt, error) {
	user, err := execute(t.path, promptData{Topic: topic})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: systemInstruction, User: user, Schema: ModuleSchema}, nil
}

func execute(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: failed to execute %s prompt template: %v", ErrGenerationFailed, tmpl.Name(), err)
	}
	return buf.String(), nil
}
