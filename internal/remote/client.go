// Package remote implements the document-store collaborators (cart mirror,
// order collection) on Cloud Firestore.
package remote

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/luxecurl/storefront/pkg/config"
	"google.golang.org/api/option"
)

// NewFirestoreClient connects to Firestore using the configured project and,
// when set, a credentials file. With no credentials file the ambient
// application-default credentials are used.
func NewFirestoreClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}
