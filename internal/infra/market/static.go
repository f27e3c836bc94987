// Package market supplies RAM market balances to the pricing code.
package market

import (
	"context"
	"sync"

	"account-provisioner/internal/domain/provisioning"
	"account-provisioner/internal/usecase/commands"
)

// Static serves balances fixed at startup. Set replaces them, for example
// from an operator endpoint or a feed.
type Static struct {
	mu     sync.RWMutex
	market provisioning.RAMMarket
}

var _ commands.MarketReader = (*Static)(nil)

func NewStatic(m provisioning.RAMMarket) *Static {
	return &Static{market: m}
}

func (s *Static) RAMMarket(context.Context) (provisioning.RAMMarket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market, nil
}

func (s *Static) Set(m provisioning.RAMMarket) {
	s.mu.Lock()
	s.market = m
	s.mu.Unlock()
}
