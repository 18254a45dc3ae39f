package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

func TestFinalPrice(t *testing.T) {
	p := &domain.Product{Price: money.MustParse("99.99")}
	require.Equal(t, "99.99", p.FinalPrice().String())

	discount := money.MustParse("79.99")
	p.DiscountPrice = &discount
	require.Equal(t, "79.99", p.FinalPrice().String())

	// a discount above the list price is ignored
	badDiscount := money.MustParse("120.00")
	p.DiscountPrice = &badDiscount
	require.Equal(t, "99.99", p.FinalPrice().String())
}
