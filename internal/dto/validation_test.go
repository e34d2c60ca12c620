package dto_test

import (
	"testing"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeRequestValidation(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, dto.RegisterValidations(v))

	tests := []struct {
		name    string
		req     dto.SubscribeRequest
		wantErr bool
	}{
		{name: "valid", req: dto.SubscribeRequest{FundID: 1, Amount: decimal.NewFromInt(75000)}},
		{name: "fractional amount", req: dto.SubscribeRequest{FundID: 3, Amount: decimal.RequireFromString("50000.50")}},
		{name: "trailing zeros", req: dto.SubscribeRequest{FundID: 3, Amount: decimal.RequireFromString("50000.500")}},
		{name: "sub-cent amount", req: dto.SubscribeRequest{FundID: 1, Amount: decimal.RequireFromString("100000.005")}, wantErr: true},
		{name: "sub-cent tail", req: dto.SubscribeRequest{FundID: 1, Amount: decimal.RequireFromString("100000.0049")}, wantErr: true},
		{name: "zero amount", req: dto.SubscribeRequest{FundID: 1, Amount: decimal.Zero}, wantErr: true},
		{name: "negative amount", req: dto.SubscribeRequest{FundID: 1, Amount: decimal.NewFromInt(-10)}, wantErr: true},
		{name: "missing fund", req: dto.SubscribeRequest{Amount: decimal.NewFromInt(75000)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
