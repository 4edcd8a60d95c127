package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is a page/limit pair as carried by list query parameters.
type Page struct {
	Number int
	Limit  int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

// Offset is the row offset for the normalized page.
func (p Page) Offset() int {
	p = p.normalized()
	return (p.Number - 1) * p.Limit
}

// Size is the row limit for the normalized page.
func (p Page) Size() int {
	return p.normalized().Limit
}
