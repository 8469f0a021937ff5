package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	profiledom "agrifarm/internal/domain/profile"
)

// ProfileRepositoryFS implements profile.Repository using Firestore.
// - collection: profiles
// - docId: auth uid
type ProfileRepositoryFS struct {
	Client *firestore.Client
}

func NewProfileRepositoryFS(client *firestore.Client) *ProfileRepositoryFS {
	return &ProfileRepositoryFS{Client: client}
}

func (r *ProfileRepositoryFS) GetByID(ctx context.Context, id string) (profiledom.Profile, error) {
	if r == nil || r.Client == nil {
		return profiledom.Profile{}, errors.New("profile_repository_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return profiledom.Profile{}, profiledom.ErrNotFound
	}

	snap, err := r.Client.Collection("profiles").Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return profiledom.Profile{}, profiledom.ErrNotFound
		}
		return profiledom.Profile{}, err
	}

	var p profiledom.Profile
	if err := snap.DataTo(&p); err != nil {
		return profiledom.Profile{}, err
	}
	p.ID = pid
	return p, nil
}
