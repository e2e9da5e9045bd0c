package mpv

const (
	// AbsoluteValue specifies seek to the position counted from the beginning of the file.
	AbsoluteValue = "absolute"
	// AppendValue specifies loadfile command playlist append.
	AppendValue = "append"
	// ReplaceValue specifies loadfile command playback replacement.
	ReplaceValue = "replace"
)
