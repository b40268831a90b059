package elevenlabs

// VoiceSettings are the synthesis parameters sent with every conversion.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// LanguageSettings selects the model and synthesis parameters for one
// language. Speech-to-speech uses its own model family; sending a
// text-to-speech model id here is rejected outright by the provider.
type LanguageSettings struct {
	ModelID       string
	VoiceSettings VoiceSettings
}

const stsMultilingualModel = "eleven_multilingual_sts_v2"

var defaultSettings = LanguageSettings{
	ModelID: stsMultilingualModel,
	VoiceSettings: VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		UseSpeakerBoost: true,
	},
}

// languageSettings carries per-language overrides. Indic languages need a
// higher similarity boost to keep the cloned timbre through the accent shift.
var languageSettings = map[string]LanguageSettings{
	"en": defaultSettings,
	"hi": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.85,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"ta": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.85,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"te": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.85,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"bn": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.55,
			SimilarityBoost: 0.8,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"mr": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.8,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"kn": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.85,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"ml": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.85,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"gu": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.8,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
	"pa": {
		ModelID: stsMultilingualModel,
		VoiceSettings: VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.8,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	},
}

// SettingsFor returns the conversion settings for a language code, falling
// back to the multilingual defaults for unknown codes.
func SettingsFor(languageCode string) LanguageSettings {
	if s, ok := languageSettings[languageCode]; ok {
		return s
	}
	return defaultSettings
}
