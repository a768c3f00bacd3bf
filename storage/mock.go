package storage

import (
	"context"

	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockCatalogStore mocks the CatalogStore interface
type MockCatalogStore struct {
	mock.Mock
}

// ListMods mocks the ListMods method
func (m *MockCatalogStore) ListMods(ctx context.Context) ([]interfaces.Mod, error) {
	args := m.Called(ctx)
	mods, _ := args.Get(0).([]interfaces.Mod)
	return mods, args.Error(1)
}

// CreateMod mocks the CreateMod method
func (m *MockCatalogStore) CreateMod(ctx context.Context, in interfaces.ModInput) (interfaces.Mod, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(interfaces.Mod), args.Error(1)
}

// UpdateMod mocks the UpdateMod method
func (m *MockCatalogStore) UpdateMod(ctx context.Context, id interfaces.ModID, patch interfaces.ModPatch) (interfaces.Mod, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(interfaces.Mod), args.Error(1)
}

// DeleteMod mocks the DeleteMod method
func (m *MockCatalogStore) DeleteMod(ctx context.Context, id interfaces.ModID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Available mocks the Available method
func (m *MockCatalogStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockCatalogStore) Name() string {
	return "mock"
}

func (m *MockCatalogStore) LocationURI() string {
	return "mock:"
}

// MockBlobSigner mocks the BlobSigner interface
type MockBlobSigner struct {
	mock.Mock
}

// CreateSignedUploadURL mocks the CreateSignedUploadURL method
func (m *MockBlobSigner) CreateSignedUploadURL(ctx context.Context, objectPath string) (interfaces.SignedUpload, error) {
	args := m.Called(ctx, objectPath)
	return args.Get(0).(interfaces.SignedUpload), args.Error(1)
}

// PublicURL mocks the PublicURL method
func (m *MockBlobSigner) PublicURL(objectPath string) string {
	args := m.Called(objectPath)
	return args.String(0)
}

func (m *MockBlobSigner) Name() string {
	return "mock"
}
