package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"testing"

	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(_ context.Context, r io.Reader, folder, filename string) (*models.Upload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	id := folder + "/" + strings.TrimSuffix(filename, path.Ext(filename))
	m.objects[id] = data
	return &models.Upload{PublicID: id, URL: "https://cdn.test/" + id, Bytes: len(data)}, nil
}

func (m *memoryStore) Remove(_ context.Context, publicID string) error {
	delete(m.objects, publicID)
	return nil
}

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var (
	providerActor = models.Actor{ID: "prov-1", Role: models.RoleProvider}
	customerActor = models.Actor{ID: "cust-1", Role: models.RoleCustomer}
)

func imageRequest(kind models.UploadKind, data []byte) UploadRequest {
	return UploadRequest{Kind: kind, Filename: "photo.png", Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func TestUploadStoresImageInOwnerFolder(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	svc := NewDefaultStorageService(store)

	upload, err := svc.Upload(context.Background(), providerActor, imageRequest(models.UploadServiceImage, pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "easybook/service_images/prov-1/photo", upload.PublicID)
	assert.Equal(t, pngHeader, store.objects[upload.PublicID])

	require.NoError(t, svc.Delete(context.Background(), providerActor, upload.PublicID))
	assert.Empty(t, store.objects)
}

func TestUploadRules(t *testing.T) {
	svc := NewDefaultStorageService(&memoryStore{objects: map[string][]byte{}})
	ctx := context.Background()

	_, err := svc.Upload(ctx, customerActor, imageRequest(models.UploadServiceImage, pngHeader))
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.Upload(ctx, customerActor, imageRequest(models.UploadProfileImage, pngHeader))
	assert.NoError(t, err)

	_, err = svc.Upload(ctx, providerActor, imageRequest(models.UploadServiceImage, []byte("just some text")))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.Upload(ctx, providerActor, imageRequest("avatar", pngHeader))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	svc.MaxBytes = 4
	_, err = svc.Upload(ctx, providerActor, imageRequest(models.UploadServiceImage, pngHeader))
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc := NewDefaultStorageService(&memoryStore{objects: map[string][]byte{}})
	ctx := context.Background()

	err := svc.Delete(ctx, customerActor, "easybook/service_images/prov-1/photo")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	admin := models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	assert.NoError(t, svc.Delete(ctx, admin, "easybook/service_images/prov-1/photo"))
}

func TestUnconfiguredStore(t *testing.T) {
	svc := NewDefaultStorageService(nil)
	_, err := svc.Upload(context.Background(), providerActor, imageRequest(models.UploadServiceImage, pngHeader))
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
}
