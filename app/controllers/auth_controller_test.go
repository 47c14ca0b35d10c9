package controllers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glimmerlab/glimmer/app/models"
	"github.com/glimmerlab/glimmer/app/repository"
)

// fakeUserRepo keeps users and claimed devices in memory.
type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uint]*models.User
	devices map[string]uint
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uint]*models.User{},
		devices: map[string]uint{},
	}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	user.ID = f.nextID
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Update(user *models.User) error { return nil }
func (f *fakeUserRepo) Delete(id uint) error           { return nil }

func (f *fakeUserRepo) List(offset, limit int) ([]models.User, error) { return nil, nil }
func (f *fakeUserRepo) Count() (int64, error)                         { return int64(len(f.byID)), nil }

func (f *fakeUserRepo) IsDeviceUsed(deviceID string) (bool, error) {
	_, ok := f.devices[deviceID]
	return ok, nil
}

func (f *fakeUserRepo) MarkDeviceUsed(deviceID string, userID uint) error {
	f.devices[deviceID] = userID
	return nil
}

func registerApp(repo repository.UserRepository) *fiber.App {
	app := fiber.New()
	ac := NewAuthController(&repository.Repositories{User: repo}, slog.Default())
	app.Post("/register", ac.HandleRegister)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (map[string]any, int) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return decoded, resp.StatusCode
}

func TestRegisterGrantsInitialCredits(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeUserRepo()
	app := registerApp(repo)

	body, status := postJSON(t, app, "/register", map[string]string{
		"name":      "Asha",
		"email":     "asha@example.com",
		"password":  "hunter22",
		"device_id": "device-1",
	})

	require.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, body["token"])

	user := repo.byEmail["asha@example.com"]
	require.NotNil(t, user)
	assert.Equal(t, 25, user.Credits)
}

func TestRegisterReusedDeviceGrantsZeroCredits(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeUserRepo()
	app := registerApp(repo)

	_, status := postJSON(t, app, "/register", map[string]string{
		"name":      "First",
		"email":     "first@example.com",
		"password":  "hunter22",
		"device_id": "shared-device",
	})
	require.Equal(t, fiber.StatusCreated, status)

	_, status = postJSON(t, app, "/register", map[string]string{
		"name":      "Second",
		"email":     "second@example.com",
		"password":  "hunter22",
		"device_id": "shared-device",
	})
	require.Equal(t, fiber.StatusCreated, status)

	first := repo.byEmail["first@example.com"]
	second := repo.byEmail["second@example.com"]
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 25, first.Credits)
	assert.Equal(t, 0, second.Credits)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := newFakeUserRepo()
	app := registerApp(repo)

	_, status := postJSON(t, app, "/register", map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusCreated, status)

	body, status := postJSON(t, app, "/register", map[string]string{
		"name":     "Imposter",
		"email":    "asha@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["message"], "already exists")
}
