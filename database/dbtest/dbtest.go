// Package dbtest starts throwaway MongoDB containers for integration tests.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

const Image = "mongo:7"

// MongoURI starts a single-node replica set, since transactions need one, and
// returns a URI that talks to it directly. The container is removed when t ends.
func MongoURI(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := mongodb.Run(ctx, Image, mongodb.WithReplicaSet("rs0"))
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate mongo container: %v", err)
		}
	})
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	return directURI(uri)
}

// directURI skips replica set discovery; the advertised member host is only
// reachable from inside the container network.
func directURI(uri string) string {
	if strings.Contains(uri, "directConnection") {
		return uri
	}
	uri = strings.TrimSuffix(uri, "/")
	sep := "/?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return uri + sep + "directConnection=true"
}
