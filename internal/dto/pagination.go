package dto

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Pagination holds page-based paging parameters
type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// SetDefaults sets default values for pagination
func (p *Pagination) SetDefaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 || p.Limit > maxPageLimit {
		p.Limit = defaultPageLimit
	}
}

// Offset returns the row offset of the current page
func (p *Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
