package gemini

import "google.golang.org/genai"

var resultSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"original_language":  {Type: genai.TypeString},
		"original_text":      {Type: genai.TypeString},
		"translated_text":    {Type: genai.TypeString},
		"romanized_text":     {Type: genai.TypeString},
		"target_translation": {Type: genai.TypeString},
		"confidence_score":   {Type: genai.TypeNumber},
		"storyboard_prompts": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{
		"original_language",
		"original_text",
		"translated_text",
		"target_translation",
		"confidence_score",
	},
}
