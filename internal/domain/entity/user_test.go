package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_BeforeSave_HashesPlainPassword(t *testing.T) {
	// Arrange
	user := &User{Email: "employee@example.com", Password: "secret123"}

	// Act
	err := user.BeforeSave(nil)

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.Password, "Пароль должен быть захеширован")
	assert.True(t, user.CheckPassword("secret123"), "Хеш должен соответствовать исходному паролю")
	assert.False(t, user.CheckPassword("wrong"), "Неверный пароль не должен проходить проверку")
}

func TestUser_BeforeSave_SkipsExistingHash(t *testing.T) {
	// Arrange
	user := &User{Email: "employee@example.com", Password: "secret123"}
	require.NoError(t, user.BeforeSave(nil))
	hashed := user.Password

	// Act: повторное сохранение не должно перехешировать
	err := user.BeforeSave(nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, hashed, user.Password, "Существующий bcrypt-хеш не должен хешироваться повторно")
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleEmployee}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}
