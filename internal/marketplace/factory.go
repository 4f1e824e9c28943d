package marketplace

import (
	"fmt"
	"time"
)

// Factory creates marketplace providers based on type
type Factory struct {
	serviceURL string
	timeout    time.Duration
}

func NewFactory(serviceURL string, timeout time.Duration) *Factory {
	return &Factory{
		serviceURL: serviceURL,
		timeout:    timeout,
	}
}

func (f *Factory) CreateByType(marketplaceType MarketplaceType) (Gallery, error) {
	switch marketplaceType {
	case MarketplaceTypeMicrosoft:
		return NewMicrosoft(f.serviceURL, f.timeout), nil
	case MarketplaceTypeOpenVSX:
		return NewOpenVSX(f.serviceURL, f.timeout), nil
	default:
		return nil, fmt.Errorf("unknown marketplace type: %s", marketplaceType)
	}
}
