package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MarketplaceRegistry answers whether an address belongs to a known
// marketplace contract, and which one
//
//go:generate mockgen -source=marketplace.go -destination=../mocks/marketplace_registry.go -package=mocks -mock_names=MarketplaceRegistry=MockMarketplaceRegistry
type MarketplaceRegistry interface {
	// Lookup returns the marketplace name for an address
	Lookup(address string) (string, bool)
}

// MarketplaceData represents the structure of the marketplaces.json file.
// Key format: marketplace name -> list of contract addresses.
type MarketplaceData map[string][]string

type marketplaceRegistry struct {
	data *MarketplaceData
	// Fast lookup map: lower-cased address -> marketplace name
	addresses map[string]string
}

// LoadMarketplaces loads the marketplace address registry from a JSON file
func LoadMarketplaces(filePath string) (MarketplaceRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read marketplace registry file: %w", err)
	}

	var marketplaceData MarketplaceData
	if err := json.Unmarshal(data, &marketplaceData); err != nil {
		return nil, fmt.Errorf("failed to parse marketplace registry JSON: %w", err)
	}

	reg := &marketplaceRegistry{
		data:      &marketplaceData,
		addresses: make(map[string]string),
	}

	for name, addrs := range marketplaceData {
		for _, addr := range addrs {
			reg.addresses[strings.ToLower(addr)] = name
		}
	}

	return reg, nil
}

// Lookup returns the marketplace name for an address
func (r *marketplaceRegistry) Lookup(address string) (string, bool) {
	if r == nil {
		return "", false
	}
	name, ok := r.addresses[strings.ToLower(address)]
	return name, ok
}
