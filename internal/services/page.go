package services

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit, caps it at max and clamps a negative offset.
func (p Page) Normalize(def, max int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
