package mpv

// command holds the name and arguments of the input command dispatched to mpv.
type command struct {
	name     string
	elements []interface{}
}

// JSONIPCFormat returns the representation expected by the mpv in the JSON payload.
func (cmd command) JSONIPCFormat() []interface{} {
	return append([]interface{}{cmd.name}, cmd.elements...)
}
