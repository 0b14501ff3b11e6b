package database

import (
	"context"
	"testing"

	"hotelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCustomerByEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("missing email", func(t *testing.T) {
		_, err := db.GetCustomerByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("oldest row wins on duplicates", func(t *testing.T) {
		first := &models.Customer{FirstName: "Jane", LastName: "Carter", Email: "jcarter@example.com"}
		require.NoError(t, db.CreateCustomer(ctx, first))

		second := &models.Customer{FirstName: "Janet", LastName: "Carther", Email: "jcarter@example.com"}
		require.NoError(t, db.CreateCustomer(ctx, second))

		got, err := db.GetCustomerByEmail(ctx, "jcarter@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "Jane", got.FirstName)
	})
}

func TestCreateCustomer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	customer := &models.Customer{
		FirstName: "Paul",
		LastName:  "Pope",
		Address:   "91 Rude Avenue, Greatley",
		Email:     "ppope@example.co.uk",
		Phone:     "+44 1917 2365548",
	}
	require.NoError(t, db.CreateCustomer(ctx, customer))
	assert.NotZero(t, customer.ID)

	got, err := db.GetCustomerByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.Email, got.Email)
	assert.Equal(t, customer.Address, got.Address)
}
