package process

import "fmt"

func scriptInstruction(tone Tone, targetLanguage string, storyboard bool) string {
	s := fmt.Sprintf(`You are a professional multilingual screenplay writer. Turn the audio, image or text the user provides into a professional %s genre script.

Fill the fields in this order:
1. original_text: the raw transcription of the input.
2. translated_text: a professionally formatted screenplay written in the SAME language as the input.
3. romanized_text: a phonetic romanization of that native script.
4. target_translation: a professional translation of the screenplay into %s.
`, tone, targetLanguage)
	if storyboard {
		s += `5. storyboard_prompts: up to four short visual descriptions for key shots, in order: establishing shot, character close-up, medium action, mood or detail.
`
	} else {
		s += `Do not produce storyboard_prompts for this request.
`
	}
	return s
}

func translatorInstruction(_ Tone, targetLanguage string, _ bool) string {
	return fmt.Sprintf(`You are a multilingual voice assistant. Process the audio, image or text the user provides.

Fill the fields in this order:
1. original_text: the raw transcription of the input.
2. translated_text: a refined version in the native language of the input.
3. romanized_text: a phonetic guide for that native text.
4. target_translation: a translation into %s.
`, targetLanguage)
}

func requestInstruction(tab Tab, targetLanguage string, tone Tone) string {
	return fmt.Sprintf("Process this for the %s tab. Output native script in translated_text and translation to %s. Genre: %s.",
		tab, targetLanguage, tone)
}

func framePrompt(prompt string, tone Tone) string {
	return fmt.Sprintf("Cinematic film still, %s movie style, highly detailed. %s", tone, prompt)
}
