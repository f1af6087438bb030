package record

// Policy decides whether a record is kept. Ratings must be strictly above
// MinRating; base time must be at least MinBaseSeconds.
type Policy struct {
	MinRating      int
	MinBaseSeconds int
}

// DefaultPolicy keeps rated games between 2000+ players at 3+ minute base
// time that ended normally with a decisive or drawn result.
var DefaultPolicy = Policy{
	MinRating:      2000,
	MinBaseSeconds: 180,
}

// Accept reports whether h satisfies every criterion.
func (p Policy) Accept(h Header) bool {
	return h.WhiteElo > p.MinRating &&
		h.BlackElo > p.MinRating &&
		h.Outcome != Unknown &&
		h.BaseSeconds >= p.MinBaseSeconds &&
		h.NormalTermination
}
