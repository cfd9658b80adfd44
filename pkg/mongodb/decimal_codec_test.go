package mongodb

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type amountDoc struct {
	Amount  decimal.Decimal  `bson:"amount"`
	Balance *decimal.Decimal `bson:"balance,omitempty"`
}

func TestDecimalCodec_StoresDecimal128(t *testing.T) {
	reg := NewRegistry()
	raw, err := bson.MarshalWithRegistry(reg, amountDoc{Amount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)

	var generic bson.M
	require.NoError(t, bson.Unmarshal(raw, &generic))
	d128, ok := generic["amount"].(primitive.Decimal128)
	require.True(t, ok, "amount should be stored as Decimal128, got %T", generic["amount"])
	assert.Equal(t, "12.50", d128.String())
	_, hasBalance := generic["balance"]
	assert.False(t, hasBalance)
}

func TestDecimalCodec_DecodesLegacyNumbers(t *testing.T) {
	reg := NewRegistry()
	for name, value := range map[string]interface{}{
		"double": 5.5,
		"int32":  int32(5),
		"int64":  int64(5),
		"string": "5",
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"amount": value})
			require.NoError(t, err)

			var doc amountDoc
			require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &doc))
			assert.True(t, doc.Amount.GreaterThan(decimal.NewFromInt(4)))
		})
	}
}

func TestDecimalCodec_RoundTripKeepsScale(t *testing.T) {
	reg := NewRegistry()
	for _, in := range []string{"12.50", "0.00", "-3.10", "5", "1000.125"} {
		t.Run(in, func(t *testing.T) {
			raw, err := bson.MarshalWithRegistry(reg, amountDoc{Amount: decimal.RequireFromString(in)})
			require.NoError(t, err)

			var doc amountDoc
			require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &doc))
			assert.Equal(t, in, doc.Amount.StringFixed(-doc.Amount.Exponent()))
			assert.True(t, decimal.RequireFromString(in).Equal(doc.Amount))
		})
	}
}
