package gemini

// translateSystemInstruction constrains the model to output translated text
// only, with no commentary. The single %s is the target language name.
const translateSystemInstruction = "You are a professional medical translator. " +
	"Translate the following text into %s. " +
	"Do not explain. Do not add notes. Just return the translated text."

const transcribeInstruction = "Transcribe this audio recording exactly as spoken. " +
	"Do not translate. Do not add commentary. Return only the transcript text."

// summaryPromptFormat demands the three mandatory sections in this literal
// order; downstream consumers rely on the headings.
const summaryPromptFormat = "You are a medical scribe. Summarize the following consultation.\n" +
	"Format strictly as:\n" +
	"**PATIENT SYMPTOMS:** ...\n" +
	"**DIAGNOSIS:** ...\n" +
	"**MEDICATIONS/PLAN:** ...\n\n" +
	"TRANSCRIPT:\n%s"
