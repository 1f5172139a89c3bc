package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,password"`
}

type listing struct {
	Price decimal.Decimal `json:"price" validate:"money"`
	Stock *int            `json:"stock" validate:"required,gte=0"`
}

type line struct {
	ProductID string `json:"productId" validate:"required,uuid_rfc4122"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type basket struct {
	Items []line `json:"items" validate:"required,min=1,dive"`
}

func intPtr(i int) *int { return &i }

func TestValidate_Password(t *testing.T) {
	v := New()
	tests := []struct {
		password string
		valid    bool
	}{
		{password: "Str0ng!pass", valid: true},
		{password: "Sh0rt!", valid: false},
		{password: "alllower1!", valid: false},
		{password: "ALLUPPER1!", valid: false},
		{password: "NoDigits!!", valid: false},
		{password: "NoSymbol12", valid: false},
		{password: "Under_sc0re", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := v.Validate(&signup{Email: "a@example.com", Name: "Al", Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verrs, ok := err.(Errors)
			require.True(t, ok)
			assert.Equal(t, "password", verrs[0].Field)
		})
	}
}

func TestValidate_FieldNamesUseJSON(t *testing.T) {
	err := New().Validate(&signup{Email: "not-an-email", Name: "A", Password: "Str0ng!pass"})
	require.Error(t, err)

	verrs := err.(Errors)
	fields := []string{}
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"email", "name"}, fields)
}

func TestValidate_DecimalAndStock(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&listing{Price: decimal.RequireFromString("9.99"), Stock: intPtr(0)}))

	err := v.Validate(&listing{Price: decimal.Zero, Stock: intPtr(-1)})
	require.Error(t, err)
	assert.Len(t, err.(Errors), 2)

	err = v.Validate(&listing{Price: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, "stock", err.(Errors)[0].Field)
	assert.Equal(t, "is required", err.(Errors)[0].Message)
}

func TestValidate_MoneyFitsColumn(t *testing.T) {
	v := New()
	tests := []struct {
		price string
		valid bool
	}{
		{price: "0.01", valid: true},
		{price: "19.90", valid: true},
		{price: "1.100", valid: true},
		{price: "99999999.99", valid: true},
		{price: "0.001", valid: false},
		{price: "0.004", valid: false},
		{price: "10.555", valid: false},
		{price: "100000000", valid: false},
		{price: "123456789.5", valid: false},
		{price: "-5", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			err := v.Validate(&listing{Price: decimal.RequireFromString(tt.price), Stock: intPtr(1)})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verrs, ok := err.(Errors)
			require.True(t, ok)
			assert.Equal(t, "price", verrs[0].Field)
		})
	}
}

func TestValidate_UppercaseUUID(t *testing.T) {
	err := New().Validate(&basket{Items: []line{{ProductID: "3F2504E0-4F89-41D3-9A0C-0305E82C3301", Quantity: 1}}})
	assert.NoError(t, err)
}

func TestValidate_NestedItems(t *testing.T) {
	v := New()

	err := v.Validate(&basket{})
	require.Error(t, err)
	assert.Equal(t, "items", err.(Errors)[0].Field)

	err = v.Validate(&basket{Items: []line{{ProductID: "nope", Quantity: 0}}})
	require.Error(t, err)
	fields := []string{}
	for _, fe := range err.(Errors) {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"items[0].productId", "items[0].quantity"}, fields)
}

func TestErrors_HTTPError(t *testing.T) {
	httpErr := Fail("minPrice", "must be a number").HTTPError()
	assert.Equal(t, 400, httpErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", httpErr.Code)
	assert.Len(t, httpErr.Details, 1)
}
