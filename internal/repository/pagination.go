package repository

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PageRequest — номер страницы (с 1) и её размер.
type PageRequest struct {
	Page     int
	PageSize int
}

// normalize подставляет дефолты при некорректных значениях.
func (p PageRequest) normalize() PageRequest {
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T   `json:"items"`     // элементы на текущей странице
	Page     int   `json:"page"`      // номер страницы (с 1)
	PageSize int   `json:"page_size"` // количество элементов на странице
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
	Total    int64 `json:"total"` // общее количество элементов
}

func newPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasPrev:  req.Page > 1,
		HasNext:  int64(req.offset()+len(items)) < total,
		Total:    total,
	}
}
