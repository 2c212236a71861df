// Package drive proxies the single JSON document that holds an authenticated
// user's full dataset in their Google Drive.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	apperrors "fintrack/internal/errors"
)

// FileName is the fixed name of the dataset document, one per identity.
const FileName = "fintrack_data.json"

const mimeType = "application/json"

// Document is a loaded dataset file: its raw content and the provider-assigned
// identifier used for subsequent in-place saves.
type Document struct {
	Content json.RawMessage
	FileID  string
}

// TokenSourcer builds a request-scoped token source from a token bundle.
type TokenSourcer interface {
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
}

// Store locates, creates and overwrites the dataset document. Every call
// builds a fresh Drive service from the caller's token bundle; nothing is
// shared between requests.
type Store struct {
	auth TokenSourcer

	// apiOpts lets tests point the Drive client at a fake endpoint.
	apiOpts []option.ClientOption
}

// NewStore creates a document store.
func NewStore(auth TokenSourcer, apiOpts ...option.ClientOption) *Store {
	return &Store{auth: auth, apiOpts: apiOpts}
}

// Load searches for the dataset document and fetches its content.
// A missing document returns (nil, nil): callers treat that as an empty
// initial dataset, not an error. When several files carry the fixed name,
// the first listing result wins.
func (s *Store) Load(ctx context.Context, token *oauth2.Token) (*Document, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("name = '%s' and trashed = false", FileName)
	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		Spaces("drive").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDriveRead, err)
	}

	if len(list.Files) == 0 {
		return nil, nil
	}
	fileID := list.Files[0].Id

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDriveRead, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDriveRead, err)
	}

	return &Document{Content: content, FileID: fileID}, nil
}

// Save writes the document. With a fileID it overwrites that file in place
// and returns the same identifier; without one it creates a new file with the
// fixed name and returns the provider-assigned identifier, which the caller
// must pass back on every later save.
func (s *Store) Save(ctx context.Context, token *oauth2.Token, content json.RawMessage, fileID string) (string, error) {
	svc, err := s.service(ctx, token)
	if err != nil {
		return "", err
	}

	if fileID != "" {
		_, err := svc.Files.Update(fileID, &drivev3.File{}).
			Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
			Context(ctx).
			Do()
		if err != nil {
			return "", apperrors.Wrap(apperrors.ErrDriveWrite, err)
		}
		return fileID, nil
	}

	created, err := svc.Files.Create(&drivev3.File{Name: FileName, MimeType: mimeType}).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDriveWrite, err)
	}
	return created.Id, nil
}

// service builds a per-request Drive client. A missing or unrefreshable
// token bundle short-circuits with an authorization failure before any
// provider call is attempted.
func (s *Store) service(ctx context.Context, token *oauth2.Token) (*drivev3.Service, error) {
	if token == nil || (!token.Valid() && token.RefreshToken == "") {
		return nil, apperrors.ErrUnauthorized
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(s.auth.TokenSource(ctx, token)),
	}, s.apiOpts...)

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDriveUnavailable, err)
	}
	return svc, nil
}
