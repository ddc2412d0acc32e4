package database

import "time"

// Provenance tags recorded in original_lang. They describe how the source
// language was determined, not an actual language code: text submissions rely
// on the model's auto-detection, audio submissions on the transcriber's.
const (
	LangAuto      = "Auto"
	LangAudioAuto = "Audio-Auto"
)

// Message represents one persisted doctor/patient utterance together with
// its translation. Messages are immutable once created; the store assigns
// ID and Timestamp at insert.
type Message struct {
	ID int64 `db:"id" json:"id"`

	Role           string `db:"role" json:"role"`
	OriginalText   string `db:"original_text" json:"original_text"`
	TranslatedText string `db:"translated_text" json:"translated_text"`
	OriginalLang   string `db:"original_lang" json:"original_lang"`
	TargetLang     string `db:"target_lang" json:"target_lang"`

	// OriginalAudioURL is set if and only if the message originated from an
	// audio upload.
	OriginalAudioURL string `db:"original_audio_url" json:"original_audio_url,omitempty"`

	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
