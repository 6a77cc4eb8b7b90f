package models

import "errors"

var (
	// сущности из разных организаций нельзя связывать между собой
	ErrForeignOrganization = errors.New("entity belongs to a different organization")

	// новый родитель каталога — потомок самого каталога
	ErrCatalogCycle = errors.New("catalog parent would create a cycle")
)
