package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"

	folderAttempts = 3
	folderDelay    = 2 * time.Second

	maxDownloadSize = 64 << 20
)

// DriveClient wraps the Drive v3 API for the operations the portal needs:
// downloading uploaded evidence, and filing generated reports.
type DriveClient struct {
	svc      *drive.Service
	maxBytes int64
}

// NewDriveClient creates a Drive client using Application Default Credentials.
func NewDriveClient(ctx context.Context, opts ...option.ClientOption) (*DriveClient, error) {
	opts = append([]option.ClientOption{option.WithScopes(drive.DriveScope)}, opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &DriveClient{svc: svc, maxBytes: maxDownloadSize}, nil
}

// Download fetches the content of a file by ID. It satisfies fetch.Downloader.
func (c *DriveClient) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, fmt.Errorf("api status %d: %s", gerr.Code, gerr.Message)
		}
		return nil, fmt.Errorf("api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("api read: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("file too large (over %d bytes)", c.maxBytes)
	}
	return data, nil
}

// EnsureFolder returns the ID of the folder called name under parentID,
// creating it when absent. The lookup is retried on transient failures.
func (c *DriveClient) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	var folderID string
	err := Retry(ctx, "drive folder lookup", folderAttempts, folderDelay, func(ctx context.Context) error {
		q := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQuery(name), folderMimeType)
		if parentID != "" {
			q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
		}
		list, err := c.svc.Files.List().
			Q(q).
			Spaces("drive").
			Fields("files(id)").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(list.Files) > 0 {
			folderID = list.Files[0].Id
			return nil
		}

		folder := &drive.File{Name: name, MimeType: folderMimeType}
		if parentID != "" {
			folder.Parents = []string{parentID}
		}
		created, err := c.svc.Files.Create(folder).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
		if err != nil {
			return err
		}
		folderID = created.Id
		c.shareAnyoneReader(ctx, folderID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return folderID, nil
}

// Upload stores data as a new file in folderID and returns its file ID.
func (c *DriveClient) Upload(ctx context.Context, name, folderID, mimeType string, data []byte) (string, error) {
	meta := &drive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	created, err := c.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to Drive: %w", name, err)
	}
	c.shareAnyoneReader(ctx, created.Id)
	return created.Id, nil
}

// shareAnyoneReader makes a file publicly readable so the direct-download
// fallback can reach it. Failure leaves the file private and is only logged.
func (c *DriveClient) shareAnyoneReader(ctx context.Context, fileID string) {
	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err := c.svc.Permissions.Create(fileID, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		slog.Warn("Could not share Drive file publicly.", "fileId", fileID, "error", err)
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
