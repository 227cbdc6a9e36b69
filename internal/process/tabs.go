package process

import "fmt"

type tabProfile struct {
	tier        Tier
	instruction func(tone Tone, targetLanguage string, storyboard bool) string
	storyboard  bool
}

var tabProfiles = map[Tab]tabProfile{
	TabTranslator:    {tier: TierFlash, instruction: translatorInstruction},
	TabScriptwriter:  {tier: TierPro, instruction: scriptInstruction, storyboard: true},
	TabTextConverter: {tier: TierPro, instruction: scriptInstruction},
}

func profileFor(tab Tab) (tabProfile, error) {
	p, ok := tabProfiles[tab]
	if !ok {
		return tabProfile{}, fmt.Errorf("%w: tab %q does not accept input", ErrInvalidRequest, tab)
	}
	return p, nil
}

// StoryboardEnabled reports whether requests from tab produce storyboard frames.
func StoryboardEnabled(tab Tab) bool {
	return tabProfiles[tab].storyboard
}
