package store

// Tally is the vote state of a post or comment
type Tally struct {
	Upvotes   int
	Downvotes int
	MyVote    int
}

// ApplyVote moves the viewer's vote to value (1, -1 or 0) and adjusts the counters
func ApplyVote(t Tally, value int) Tally {
	switch t.MyVote {
	case 1:
		t.Upvotes = max(t.Upvotes-1, 0)
	case -1:
		t.Downvotes = max(t.Downvotes-1, 0)
	}
	switch value {
	case 1:
		t.Upvotes++
	case -1:
		t.Downvotes++
	}
	t.MyVote = value
	return t
}

// ToggleVote returns the explicit value for pressing the dir button (1 or -1):
// pressing the active direction clears the vote.
func ToggleVote(current, dir int) int {
	if current == dir {
		return 0
	}
	return dir
}

// Membership is a boolean relation with a counter, such as follow state and
// follower count or collect state and collect count.
type Membership struct {
	Member bool
	Count  int
}

// ApplyMembership sets the relation to member. Setting the current value is a no-op.
func ApplyMembership(m Membership, member bool) Membership {
	if m.Member == member {
		return m
	}
	m.Member = member
	if member {
		m.Count++
	} else {
		m.Count = max(m.Count-1, 0)
	}
	return m
}
