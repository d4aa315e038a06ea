package entity

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is the single live poll of a room. Ballots maps a voter's
// connection id to the option index it currently backs; a voter has at
// most one live ballot and re-voting overwrites the previous choice.
type Poll struct {
	Question string         `json:"question"`
	Options  []PollOption   `json:"options"`
	Ballots  map[string]int `json:"votes"`
	Active   bool           `json:"active"`
}

// NewPoll treats duplicate option texts as independent options, they are
// never merged.
func NewPoll(question string, options []string) *Poll {
	opts := make([]PollOption, len(options))
	for i, text := range options {
		opts[i] = PollOption{Text: text}
	}
	return &Poll{
		Question: question,
		Options:  opts,
		Ballots:  make(map[string]int),
		Active:   true,
	}
}

// Recount rebuilds every option tally from the ballot map. The rebuild is
// order-independent and idempotent, so the counts always equal the number
// of ballots pointing at each index.
func (p *Poll) Recount() {
	for i := range p.Options {
		p.Options[i].Votes = 0
	}
	for _, idx := range p.Ballots {
		if idx >= 0 && idx < len(p.Options) {
			p.Options[idx].Votes++
		}
	}
}

// Clone returns a deep copy safe to hand to broadcast payloads while the
// original keeps mutating under the room lock.
func (p *Poll) Clone() *Poll {
	if p == nil {
		return nil
	}
	cp := &Poll{
		Question: p.Question,
		Options:  make([]PollOption, len(p.Options)),
		Ballots:  make(map[string]int, len(p.Ballots)),
		Active:   p.Active,
	}
	copy(cp.Options, p.Options)
	for voter, idx := range p.Ballots {
		cp.Ballots[voter] = idx
	}
	return cp
}
