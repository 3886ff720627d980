package apngdec

// State is the lifecycle stage of a Decoder.
type State int

const (
	StateNew     State = iota // nothing parsed yet
	StateHeader               // signature and IHDR parsed
	StateLoaded               // global chunks parsed, cursor on image data
	StateDecoded              // a frame has been decoded
	StateError                // a sticky error was recorded; absorbing
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateHeader:
		return "header"
	case StateLoaded:
		return "loaded"
	case StateDecoded:
		return "decoded"
	case StateError:
		return "error"
	}
	return "unknown"
}

// transitions lists the states reachable from each state. Every state may
// move to StateError, and StateError leads nowhere.
var transitions = map[State][]State{
	StateNew:     {StateHeader, StateError},
	StateHeader:  {StateLoaded, StateError},
	StateLoaded:  {StateDecoded, StateError},
	StateDecoded: {StateDecoded, StateError},
	StateError:   nil,
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
