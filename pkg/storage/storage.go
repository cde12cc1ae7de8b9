// Package storage provides blob storage operations with an Azure Blob Storage implementation.
// It owns the two containers the report pipeline works against: one for uploaded
// CSV sources and one for produced report artifacts.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"github.com/tallyhq/tally/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that initializes the storage containers.
	Start(lc *lifecycle.Coordinator) error
	// Read returns the full text content of the object at container/key.
	// Returns ErrNotFound if the object does not exist.
	Read(ctx context.Context, container, key string) (string, error)
	// Write stores content at container/key with the specified content type,
	// overwriting any existing object.
	Write(ctx context.Context, container, key, content, contentType string) error
	// Exists reports whether an object exists at container/key.
	Exists(ctx context.Context, container, key string) (bool, error)
	// List returns the keys in container matching the given prefix.
	List(ctx context.Context, container, prefix string) ([]string, error)
	// SignUpload returns a time-limited URL permitting a single PUT of the
	// object at key into the uploads container.
	SignUpload(ctx context.Context, key string) (string, error)
	// SignDownload returns a time-limited URL permitting a GET of the object
	// at key from the results container.
	SignDownload(ctx context.Context, key string) (string, error)
	// Uploads returns the uploads container name.
	Uploads() string
	// Results returns the results container name.
	Results() string
}

type azure struct {
	client  *azblob.Client
	uploads string
	results string
	linkTTL time.Duration
	logger  *slog.Logger
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:  client,
		uploads: cfg.UploadsContainer,
		results: cfg.ResultsContainer,
		linkTTL: cfg.LinkTTLDuration(),
		logger:  logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, container := range []string{a.uploads, a.results} {
			_, err := a.client.CreateContainer(lc.Context(), container, nil)
			if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "container", container, "error", err)
				return
			}
		}

		a.logger.Info("storage containers ready", "uploads", a.uploads, "results", a.results)
	})

	return nil
}

func (a *azure) Read(ctx context.Context, container, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	resp, err := a.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("download blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", key, err)
	}

	return string(data), nil
}

func (a *azure) Write(ctx context.Context, container, key, content, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, container, key, strings.NewReader(content), opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, container, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(container).
		NewBlobClient(key)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s: %w", key, err)
	}

	return true, nil
}

func (a *azure) List(ctx context.Context, container, prefix string) ([]string, error) {
	pager := a.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		Prefix: &prefix,
	})

	keys := make([]string, 0)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}

	return keys, nil
}

func (a *azure) SignUpload(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.uploads).
		NewBlobClient(key)

	permissions := sas.BlobPermissions{Create: true, Write: true}

	url, err := blobClient.GetSASURL(permissions, time.Now().UTC().Add(a.linkTTL), nil)
	if err != nil {
		return "", fmt.Errorf("sign upload %s: %w", key, err)
	}

	return url, nil
}

func (a *azure) SignDownload(_ context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(a.results).
		NewBlobClient(key)

	permissions := sas.BlobPermissions{Read: true}

	url, err := blobClient.GetSASURL(permissions, time.Now().UTC().Add(a.linkTTL), nil)
	if err != nil {
		return "", fmt.Errorf("sign download %s: %w", key, err)
	}

	return url, nil
}

func (a *azure) Uploads() string {
	return a.uploads
}

func (a *azure) Results() string {
	return a.results
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
