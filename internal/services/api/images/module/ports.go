package module

import "allsky/internal/services/api/images/domain"

// Ports are the images capabilities other modules may consume
type Ports struct {
	Catalogue domain.CataloguePort
}
