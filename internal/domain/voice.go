package domain

// VoiceGender tags a voice option for display grouping.
type VoiceGender string

const (
	VoiceGenderFemale VoiceGender = "female"
	VoiceGenderMale   VoiceGender = "male"
)

// Voice is a static speech synthesis voice option. The catalog is fixed at
// process start; voices are never created or destroyed at runtime.
type Voice struct {
	// Name is the human-readable display name.
	Name string `json:"name"`
	// ID is the provider-recognized voice identifier.
	ID string `json:"id"`
	// Gender is a display grouping tag.
	Gender VoiceGender `json:"gender"`
}

// Voices is the built-in voice catalog, matching the prebuilt voices the
// Gemini TTS models expose.
var Voices = []Voice{
	{Name: "Kore", ID: "Kore", Gender: VoiceGenderFemale},
	{Name: "Leda", ID: "Leda", Gender: VoiceGenderFemale},
	{Name: "Aoede", ID: "Aoede", Gender: VoiceGenderFemale},
	{Name: "Zephyr", ID: "Zephyr", Gender: VoiceGenderFemale},
	{Name: "Puck", ID: "Puck", Gender: VoiceGenderMale},
	{Name: "Charon", ID: "Charon", Gender: VoiceGenderMale},
	{Name: "Fenrir", ID: "Fenrir", Gender: VoiceGenderMale},
	{Name: "Orus", ID: "Orus", Gender: VoiceGenderMale},
}

// VoiceByID looks up a voice in the catalog. Returns nil if unknown.
func VoiceByID(id string) *Voice {
	for i := range Voices {
		if Voices[i].ID == id {
			return &Voices[i]
		}
	}
	return nil
}
