package domain

// Product — позиция каталога. Товар живёт независимо от заказов:
// строки заказов ссылаются на него, но не владеют им.
type Product struct {
	// ID генерируется хранилищем при вставке.
	ID          int64
	Name        string
	Description string
	Price       float64
}

// Validate проверяет обязательные поля товара и возвращает
// ValidationError с именем нарушенного поля.
func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "product name cannot be empty"}
	}
	if p.Description == "" {
		return &ValidationError{Field: "description", Reason: "product description cannot be empty"}
	}
	if p.Price <= 0 {
		return &ValidationError{Field: "price", Reason: "product price must be greater than 0"}
	}
	return nil
}
