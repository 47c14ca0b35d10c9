package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Asha", "asha@example.com", "hunter22", "", 25)
	require.NoError(t, err)

	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, DefaultCountry, user.Country)
	assert.Equal(t, 25, user.Credits)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.False(t, user.IsAdmin)
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("A", "not-an-email", "pw", "", 0)
	assert.Error(t, err)
}

func TestPasswordRoundTrip(t *testing.T) {
	user, err := CreateUser("Asha", "asha@example.com", "hunter22", "India", 0)
	require.NoError(t, err)

	assert.True(t, user.CheckPassword("hunter22"))
	assert.False(t, user.CheckPassword("wrong"))

	require.NoError(t, user.SetPassword("new-password"))
	assert.True(t, user.CheckPassword("new-password"))
	assert.False(t, user.CheckPassword("hunter22"))
}
