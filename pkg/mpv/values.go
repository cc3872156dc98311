package mpv

const (
	// NoValue is equivalent to false (where required by property). For ab-loop properties it clears the bound.
	NoValue = "no"
	// ReplaceValue specifies loadfile command playback replacement.
	ReplaceValue = "replace"
	// YesValue is equivalent to true (where required by property).
	YesValue = "yes"
)
