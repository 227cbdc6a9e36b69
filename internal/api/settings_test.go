package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writemyvoice/wmv-engine/internal/mqttclient"
	"github.com/writemyvoice/wmv-engine/internal/settings"
)

func TestSettings_Get(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "GET", "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"autoPlayVoice": false,
		"defaultTargetLanguage": "English",
		"defaultTone": "Neutral",
		"hapticFeedback": true,
		"uiIntensity": "High"
	}`, rec.Body.String())
}

func TestSettings_Patch(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "PATCH", "/api/v1/settings", `{"uiIntensity":"Soft","defaultTargetLanguage":"bn"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[settings.Settings](t, rec)
	assert.Equal(t, settings.IntensitySoft, got.UIIntensity)
	assert.Equal(t, "Bengali", got.DefaultTargetLanguage)
	assert.True(t, got.HapticFeedback)
	assert.Equal(t, got, env.settings.Get())
	assert.Equal(t, []string{mqttclient.EventSettingsUpdated}, env.events.types())
}

func TestSettings_Put(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, "PUT", "/api/v1/settings", settings.Settings{
		AutoPlayVoice:         true,
		DefaultTargetLanguage: "Urdu",
		DefaultTone:           "Comedy",
		HapticFeedback:        false,
		UIIntensity:           settings.IntensityHigh,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.settings.Get().AutoPlayVoice)
	assert.Equal(t, "Urdu", env.settings.Get().DefaultTargetLanguage)
}

func TestSettings_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		code   string
	}{
		{"bad_tone", "PATCH", `{"defaultTone":"Western"}`, ErrInvalidSettings},
		{"bad_intensity", "PATCH", `{"uiIntensity":"Max"}`, ErrInvalidSettings},
		{"unknown_field", "PATCH", `{"theme":"dark"}`, ErrInvalidBody},
		{"incomplete_put", "PUT", `{"autoPlayVoice":true}`, ErrInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			rec := env.do(t, tt.method, "/api/v1/settings", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeBody[ErrorResponse](t, rec).Code)
			assert.Equal(t, settings.Defaults(), env.settings.Get())
			assert.Empty(t, env.events.types())
		})
	}
}
