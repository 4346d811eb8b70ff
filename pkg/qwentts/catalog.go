package qwentts

import "strings"

// Speaker is a preset voice of the CustomVoice checkpoints.
type Speaker struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Language    string `json:"language" yaml:"language"`
}

// Speakers lists the preset voices.
var Speakers = []Speaker{
	{ID: "Ryan", Name: "Ryan", Description: "Dynamic male, strong rhythm", Language: "English"},
	{ID: "Aiden", Name: "Aiden", Description: "Sunny American male, clear midrange", Language: "English"},
	{ID: "Vivian", Name: "Vivian", Description: "Bright, slightly edgy young female", Language: "Chinese"},
	{ID: "Serena", Name: "Serena", Description: "Warm, gentle young female", Language: "Chinese"},
	{ID: "Uncle_Fu", Name: "Uncle Fu", Description: "Seasoned male, low mellow timbre", Language: "Chinese"},
	{ID: "Dylan", Name: "Dylan", Description: "Youthful Beijing male, clear natural", Language: "Chinese (Beijing)"},
	{ID: "Eric", Name: "Eric", Description: "Lively Chengdu male, slightly husky", Language: "Chinese (Sichuan)"},
	{ID: "Ono_Anna", Name: "Ono Anna", Description: "Playful Japanese female, light nimble", Language: "Japanese"},
	{ID: "Sohee", Name: "Sohee", Description: "Warm Korean female, rich emotion", Language: "Korean"},
}

// Languages lists the languages the checkpoints accept. "Auto" lets the model
// detect the language from the text.
var Languages = []string{
	"Auto", "English", "Chinese", "Japanese", "Korean",
	"German", "French", "Russian", "Portuguese", "Spanish", "Italian",
}

// DefaultSpeaker and DefaultLanguage are used when a caller gives none.
const (
	DefaultSpeaker  = "Ryan"
	DefaultLanguage = "English"
)

// LookupSpeaker finds a preset speaker by id or display name, ignoring case.
func LookupSpeaker(name string) (Speaker, bool) {
	for _, s := range Speakers {
		if strings.EqualFold(s.ID, name) || strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Speaker{}, false
}

// ModeInfo describes a generation mode for display.
type ModeInfo struct {
	ID          Mode   `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ModeInfos describes every mode.
var ModeInfos = []ModeInfo{
	{ID: ModeCustomVoice, Name: "Custom Voice", Description: "Use preset voices with optional style instructions"},
	{ID: ModeVoiceClone, Name: "Voice Clone", Description: "Clone a voice from a reference audio"},
	{ID: ModeVoiceDesign, Name: "Voice Design", Description: "Design a voice using natural language description"},
}

// SizeInfo describes a model size for display.
type SizeInfo struct {
	ID          ModelSize `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
}

// SizeInfos describes every model size.
var SizeInfos = []SizeInfo{
	{ID: Size06B, Name: "0.6B (Faster)", Description: "Smaller model, faster generation"},
	{ID: Size17B, Name: "1.7B (Better Quality)", Description: "Larger model, better quality"},
}

// Catalog bundles everything a front end needs to offer choices.
type Catalog struct {
	Modes     []ModeInfo `json:"modes" yaml:"modes"`
	Models    []SizeInfo `json:"models" yaml:"models"`
	Speakers  []Speaker  `json:"speakers" yaml:"speakers"`
	Languages []string   `json:"languages" yaml:"languages"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Modes:     ModeInfos,
		Models:    SizeInfos,
		Speakers:  Speakers,
		Languages: Languages,
	}
}
