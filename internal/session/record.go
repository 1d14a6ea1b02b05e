package session

// Snapshot is a history entry: the state and meta in effect when the
// passage was left, and that passage's id. A nil *Snapshot in a history is a
// placeholder for a transition that must not be rewound to directly.
type Snapshot struct {
	State   map[string]any `json:"state"`
	Meta    map[string]any `json:"meta"`
	Passage string         `json:"passage"`
}

// Record is the persisted form of a session.
type Record struct {
	State       map[string]any `json:"state"`
	PassageName string         `json:"passageName"`
	Meta        map[string]any `json:"meta"`
	Globals     map[string]any `json:"globals"`
	History     []*Snapshot    `json:"history"`
}

// Checkpoints counts the non-placeholder entries of a history.
func Checkpoints(history []*Snapshot) int {
	n := 0
	for _, h := range history {
		if h != nil {
			n++
		}
	}
	return n
}
